package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// DefaultScanStateTTL: 관측 상태 보관 기간
const DefaultScanStateTTL = 24 * time.Hour

// ScanStateStore: 스캐너가 세션별로 마지막에 본 구간을 JSON 으로 보관한다.
type ScanStateStore struct {
	client valkey.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewScanStateStore: ttl 이 0 이하이면 DefaultScanStateTTL.
func NewScanStateStore(client valkey.Client, ttl time.Duration, logger *slog.Logger) *ScanStateStore {
	if ttl <= 0 {
		ttl = DefaultScanStateTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanStateStore{client: client, ttl: ttl, logger: logger}
}

// Get: 관측이 없으면 nil.
func (s *ScanStateStore) Get(ctx context.Context, guildID, userID string) (*model.ScanObservation, error) {
	cmd := s.client.B().Get().Key(scanStateKey(guildID, userID)).Build()
	raw, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkeyx.IsNil(err) {
			return nil, nil
		}
		return nil, valkeyx.WrapRedisError("scan_state_get", err)
	}

	var obs model.ScanObservation
	if err := json.Unmarshal(raw, &obs); err != nil {
		// 깨진 값은 관측이 없는 것으로 본다.
		s.logger.Warn("scan_state_decode_failed",
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, nil
	}
	return &obs, nil
}

// Put: 관측을 TTL 과 함께 덮어쓴다.
func (s *ScanStateStore) Put(ctx context.Context, guildID, userID string, obs model.ScanObservation) error {
	payload, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("marshal scan observation failed: %w", err)
	}
	cmd := s.client.B().Set().Key(scanStateKey(guildID, userID)).Value(string(payload)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return valkeyx.WrapRedisError("scan_state_put", err)
	}
	return nil
}

// Clear: 세션이 끝나면 관측을 지운다.
func (s *ScanStateStore) Clear(ctx context.Context, guildID, userID string) error {
	cmd := s.client.B().Del().Key(scanStateKey(guildID, userID)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return valkeyx.WrapRedisError("scan_state_clear", err)
	}
	return nil
}
