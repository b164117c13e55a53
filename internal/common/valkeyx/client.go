package valkeyx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
)

// Config: Valkey 클라이언트 연결 설정이다.
type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration

	// DisableCache: 클라이언트 사이드 캐싱을 끈다. miniredis 사용 시 true.
	DisableCache bool
	// ForceSingleClient: 클러스터 탐색 없이 단일 노드로 접속한다.
	ForceSingleClient bool
}

// NewClient: 설정으로 Valkey 클라이언트를 만든다. Addr 가 '/' 로 시작하면 UDS 로 접속한다.
func NewClient(cfg Config) (valkey.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("valkey addr is empty")
	}

	opts := valkey.ClientOption{
		InitAddress:       []string{addr},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		DisableCache:      cfg.DisableCache,
		ForceSingleClient: cfg.ForceSingleClient,
	}
	if cfg.DialTimeout > 0 {
		opts.Dialer.Timeout = cfg.DialTimeout
	}
	if strings.HasPrefix(addr, "/") {
		opts.ForceSingleClient = true
		opts.DialFn = unixDialer(cfg.DialTimeout)
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client failed: %w", err)
	}
	return client, nil
}

// Ping: PING 으로 연결 상태를 점검한다.
func Ping(ctx context.Context, client valkey.Client) error {
	if client == nil {
		return errors.New("valkey client is nil")
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

// IsNil: 래핑된 에러까지 풀어 Valkey nil 응답인지 확인한다.
func IsNil(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if valkey.IsValkeyNil(e) {
			return true
		}
	}
	return false
}

// WrapRedisError: 작업 이름을 붙여 공통 RedisError 로 감싼다.
func WrapRedisError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.RedisError{Operation: operation, Err: err}
}

// IsBusyGroup: XGROUP CREATE 시 그룹이 이미 있는 경우
func IsBusyGroup(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

// IsNoGroup: 스트림/그룹이 사라진 경우 (ex: FLUSHALL 이후)
func IsNoGroup(err error) bool {
	return err != nil && strings.Contains(err.Error(), "NOGROUP")
}

// Close: nil 안전하게 클라이언트를 닫는다.
func Close(client valkey.Client) {
	if client != nil {
		client.Close()
	}
}
