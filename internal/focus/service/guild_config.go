package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/cache"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
)

// GuildConfigService: 길드 설정 조회/변경. 조회는 프로세스 내 TTL 캐시를 거친다.
type GuildConfigService struct {
	repo   *repository.Repository
	clock  clock.Clock
	cache  *cache.TTLLRUCache[model.GuildConfig]
	sf     singleflight.Group
	logger *slog.Logger

	// 길드별 변경 세대. 읽기 시작 뒤 세대가 바뀌었으면 읽은 값을 캐시에 넣지 않는다.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewGuildConfigService: ttl 이 0 이하이면 캐시 없이 매번 저장소를 읽는다.
func NewGuildConfigService(repo *repository.Repository, clk clock.Clock, ttl time.Duration, maxEntries int, logger *slog.Logger) *GuildConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuildConfigService{
		repo:   repo,
		clock:  clk,
		cache:  cache.NewTTLLRUCache[model.GuildConfig](maxEntries, ttl),
		logger: logger,
		gens:   make(map[string]uint64),
	}
}

// Get: 설정이 없으면 기본값.
func (s *GuildConfigService) Get(ctx context.Context, guildID string) (model.GuildConfig, error) {
	if cfg, ok := s.cache.Get(guildID); ok {
		return cfg, nil
	}

	v, err, _ := s.sf.Do(guildID, func() (any, error) {
		gen := s.generation(guildID)
		cfg, err := s.repo.FindGuildConfig(ctx, guildID)
		if err != nil {
			return nil, err
		}
		s.storeIfCurrent(guildID, gen, cfg)
		return cfg, nil
	})
	if err != nil {
		return model.GuildConfig{}, err
	}
	cfg, ok := v.(model.GuildConfig)
	if !ok {
		return model.GuildConfig{}, fmt.Errorf("unexpected guild config type %T", v)
	}
	return cfg, nil
}

// SetChannel: 알림 채널을 바꾼다.
func (s *GuildConfigService) SetChannel(ctx context.Context, guildID, channel string) error {
	return s.update(ctx, guildID, map[string]any{"pomodoro_channel": channel})
}

// SetRole: 모드별 역할을 바꾼다.
func (s *GuildConfigService) SetRole(ctx context.Context, guildID string, mode model.Mode, role string) error {
	col := "role_a"
	if mode == model.ModeB {
		col = "role_b"
	}
	return s.update(ctx, guildID, map[string]any{col: role})
}

// SetMaintenance: 점검 플래그를 바꾼다.
func (s *GuildConfigService) SetMaintenance(ctx context.Context, guildID string, enabled bool) error {
	return s.update(ctx, guildID, map[string]any{"maintenance": enabled})
}

func (s *GuildConfigService) update(ctx context.Context, guildID string, fields map[string]any) error {
	err := s.repo.UpdateGuildConfig(ctx, guildID, fields, s.clock.Now())
	s.invalidate(guildID)
	if err != nil {
		return err
	}
	s.logger.Info("guild_config_updated", slog.String("guild_id", guildID), slog.Any("fields", fields))
	return nil
}

func (s *GuildConfigService) generation(guildID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[guildID]
}

func (s *GuildConfigService) storeIfCurrent(guildID string, gen uint64, cfg model.GuildConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[guildID] != gen {
		return
	}
	s.cache.Set(guildID, cfg)
}

// invalidate: 세대를 올리고 캐시를 비운다. 진행 중인 읽기에 새 호출자가 합류하지 않도록 singleflight 키도 잊는다.
func (s *GuildConfigService) invalidate(guildID string) {
	s.mu.Lock()
	s.gens[guildID]++
	s.cache.Delete(guildID)
	s.mu.Unlock()
	s.sf.Forget(guildID)
}
