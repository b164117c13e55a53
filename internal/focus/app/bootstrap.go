// Package app 은 집중 봇 의존성을 조립한다.
package app

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
	fredis "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/redis"
)

// Initialize 는 집중 봇 의존성을 초기화하고 ServerApp 을 반환한다.
func Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	msgProvider, err := newFocusMessageProvider()
	if err != nil {
		return nil, nil, err
	}

	cleanupTelemetry, err := newFocusTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	db, cleanupDB, err := newFocusDB(ctx, cfg, logger)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	repo, err := newFocusRepository(ctx, cfg, db, logger)
	if err != nil {
		cleanupDB()
		cleanupTelemetry()
		return nil, nil, err
	}

	dataValkey, cleanupDataValkey, err := bootstrap.NewAndPingDataValkeyClient(ctx, cfg.Redis, logger)
	if err != nil {
		cleanupDB()
		cleanupTelemetry()
		return nil, nil, err
	}

	mqValkey, cleanupMQValkey, err := bootstrap.NewAndPingMQValkeyClient(ctx, cfg.Valkey, logger)
	if err != nil {
		cleanupDataValkey()
		cleanupDB()
		cleanupTelemetry()
		return nil, nil, err
	}

	observations := fredis.NewScanStateStore(dataValkey.Client, 0, logger)
	services := newFocusServices(cfg, repo, observations, msgProvider, logger)
	publisher := newFocusReplyPublisher(cfg, mqValkey, logger)

	scanner := newFocusScanner(cfg, repo, dataValkey, observations, services, publisher, logger)
	mqPipeline := newFocusMQPipeline(cfg, mqValkey, msgProvider, services, publisher, logger)
	httpServer := newFocusHTTPServer(cfg, services, newFocusHealthChecks(db, dataValkey, mqValkey), logger)

	serverApp := newFocusServerApp(logger, httpServer, mqPipeline, scanner)

	cleanup := func() {
		cleanupMQValkey()
		cleanupDataValkey()
		cleanupDB()
		cleanupTelemetry()
	}
	return serverApp, cleanup, nil
}
