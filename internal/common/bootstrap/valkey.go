package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/valkey-io/valkey-go"

	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"
)

// DataValkeyClient: 캐시/스캐너 상태 저장용 클라이언트
type DataValkeyClient struct{ valkey.Client }

// MQValkeyClient: 메시지 큐용 클라이언트
type MQValkeyClient struct{ valkey.Client }

// NewAndPingValkeyClient: 클라이언트를 만들고 PING 으로 확인한다. 실패하면 정리 후 에러를 반환한다.
func NewAndPingValkeyClient(ctx context.Context, cfg valkeyx.Config, name string, logger *slog.Logger) (valkey.Client, func(), error) {
	client, err := valkeyx.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s client failed: %w", name, err)
	}
	closeFn := func() {
		valkeyx.Close(client)
		logger.Debug("valkey_client_closed", "name", name)
	}
	if err := valkeyx.Ping(ctx, client); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("%s ping failed: %w", name, err)
	}
	return client, closeFn, nil
}

// NewAndPingDataValkeyClient: 데이터용 클라이언트. 소켓 경로가 있으면 UDS 로 접속한다.
func NewAndPingDataValkeyClient(ctx context.Context, cfg commonconfig.RedisConfig, logger *slog.Logger) (DataValkeyClient, func(), error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	if cfg.SocketPath != "" {
		addr = cfg.SocketPath
	}
	client, closeFn, err := NewAndPingValkeyClient(ctx, valkeyx.Config{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}, "valkey", logger)
	if err != nil {
		return DataValkeyClient{}, nil, err
	}
	return DataValkeyClient{Client: client}, closeFn, nil
}

// NewAndPingMQValkeyClient: 큐 상태가 계속 바뀌므로 클라이언트 캐싱을 끈다.
func NewAndPingMQValkeyClient(ctx context.Context, cfg commonconfig.ValkeyMQConfig, logger *slog.Logger) (MQValkeyClient, func(), error) {
	client, closeFn, err := NewAndPingValkeyClient(ctx, valkeyx.Config{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DialTimeout:  cfg.DialTimeout,
		DisableCache: true,
	}, "valkey mq", logger)
	if err != nil {
		return MQValkeyClient{}, nil, err
	}
	return MQValkeyClient{Client: client}, closeFn, nil
}
