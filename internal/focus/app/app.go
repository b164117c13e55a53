package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/valkey-io/valkey-go"
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/accesscontrol"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/dbutil"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/httpserver"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	commonmq "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/assets"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/httpapi"
	fmq "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/mq"
	fredis "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/redis"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

const shutdownTimeout = 10 * time.Second

type focusServices struct {
	clock       clock.Clock
	formatter   *service.Formatter
	ledger      *service.Ledger
	guilds      *service.GuildConfigService
	maintenance *service.MaintenanceService
	stats       *service.StatsService
}

func newFocusMessageProvider() (*messageprovider.Provider, error) {
	provider, err := messageprovider.NewFromYAMLAtPath(assets.FocusMessagesYAML, "focus")
	if err != nil {
		return nil, fmt.Errorf("load focus messages failed: %w", err)
	}
	return provider, nil
}

func newFocusTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	logger.Info("telemetry_initialized", "enabled", provider.IsEnabled(), "service", cfg.Telemetry.ServiceName)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}, nil
}

func newFocusDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	retry := dbutil.DefaultRetryConfig()
	if cfg.Database.OpenRetries > 0 {
		retry.MaxAttempts = cfg.Database.OpenRetries
	}
	db, sqlDB, err := dbutil.OpenWithRetry(ctx, func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		return dbutil.Open(ctx, cfg.Database)
	}, retry, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open database failed: %w", err)
	}

	closeFn := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("database_close_failed", "err", closeErr)
		}
	}
	logger.Info("database_opened", "driver", cfg.Database.Driver)
	return db, closeFn, nil
}

func newFocusRepository(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*repository.Repository, error) {
	loc, err := cfg.Focus.Location()
	if err != nil {
		return nil, err
	}
	repo := repository.New(db, repository.WithStreakPolicy(repository.StreakPolicy{
		Location:  loc,
		ResetHour: cfg.Focus.ResetHour,
	}))
	if _, err := repo.Migrate(ctx, logger); err != nil {
		return nil, fmt.Errorf("migrate failed: %w", err)
	}
	return repo, nil
}

func newFocusServices(
	cfg *config.Config,
	repo *repository.Repository,
	observations service.ObservationStore,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) *focusServices {
	clk := clock.System{}
	ledgerCfg := service.DefaultLedgerConfig()
	ledgerCfg.CommitTimeout = cfg.Focus.CommitTimeout

	ledger := service.NewLedger(repo, cfg.Focus.CycleTable(), clk, observations, ledgerCfg, logger)
	guilds := service.NewGuildConfigService(repo, clk, cfg.Focus.GuildCacheTTL, cfg.Focus.DedupMaxEntries, logger)
	return &focusServices{
		clock:       clk,
		formatter:   service.NewFormatter(msgProvider),
		ledger:      ledger,
		guilds:      guilds,
		maintenance: service.NewMaintenanceService(guilds, ledger, logger),
		stats:       service.NewStatsService(repo, clk, logger),
	}
}

func newFocusReplyPublisher(cfg *config.Config, mqValkey bootstrap.MQValkeyClient, logger *slog.Logger) *commonmq.StreamPublisher {
	return commonmq.NewStreamPublisher(mqValkey.Client, logger, commonmq.StreamPublisherConfig{
		Stream: cfg.Valkey.ReplyStreamKey,
		MaxLen: cfg.Valkey.StreamMaxLen,
	})
}

func newFocusScanner(
	cfg *config.Config,
	repo *repository.Repository,
	dataValkey bootstrap.DataValkeyClient,
	observations service.ObservationStore,
	services *focusServices,
	publisher *commonmq.StreamPublisher,
	logger *slog.Logger,
) *service.Scanner {
	notifier := fmq.NewReplyNotifier(publisher.PublishOutbound, services.guilds, services.stats, services.formatter, fmq.NotifierConfig{
		RatePerSecond: cfg.Focus.NotifyRate,
		Burst:         cfg.Focus.NotifyBurst,
		Timeout:       cfg.Focus.NotifyTimeout,
	}, logger)
	lease := fredis.NewScannerLease(dataValkey.Client, leaseOwner(), cfg.Focus.ScanLeaseTTL)

	return service.NewScanner(repo, cfg.Focus.CycleTable(), services.clock, observations, lease, notifier, service.ScannerConfig{
		Interval:       cfg.Focus.ScanInterval,
		Concurrency:    cfg.Focus.ScanConcurrency,
		SessionTimeout: cfg.Focus.ScanSessionTimeout,
		CommitTimeout:  cfg.Focus.CommitTimeout,
	}, logger)
}

// leaseOwner: 프로세스마다 다른 임대 소유자 이름
func leaseOwner() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "focus"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

type focusMQPipeline struct {
	streamConsumer *commonmq.StreamConsumer
	streamHandler  *commonmq.StreamMessageHandler
}

func newFocusMQPipeline(
	cfg *config.Config,
	mqValkey bootstrap.MQValkeyClient,
	msgProvider *messageprovider.Provider,
	services *focusServices,
	publisher *commonmq.StreamPublisher,
	logger *slog.Logger,
) *focusMQPipeline {
	commandHandler := fmq.NewFocusCommandHandler(
		services.ledger,
		services.stats,
		services.maintenance,
		services.guilds,
		services.formatter,
		cfg.Commands.Prefix,
		logger,
	)
	messageSender := commonmq.NewMessageSender(msgProvider, publisher.PublishOutbound, commonconfig.KakaoMessageMaxLength)

	messageService := fmq.NewFocusMessageService(
		commandHandler,
		fmq.NewCommandParser(cfg.Commands.Prefix),
		messageSender,
		accesscontrol.New(cfg.Access),
		cfg.Admin,
		services.stats,
		cfg.Focus.DedupTTL,
		cfg.Focus.DedupMaxEntries,
		logger,
	)

	streamConsumer := commonmq.NewStreamConsumer(mqValkey.Client, logger, commonmq.StreamConsumerConfig{
		Stream:              cfg.Valkey.StreamKey,
		Group:               cfg.Valkey.ConsumerGroup,
		Name:                cfg.Valkey.ConsumerName,
		BatchSize:           cfg.Valkey.BatchSize,
		Block:               cfg.Valkey.BlockTimeout,
		Concurrency:         cfg.Valkey.Concurrency,
		ResetGroupOnStartup: cfg.Valkey.ResetConsumerGroupOnStartup,
		AckOnError:          true,
		AckMaxRetries:       3,
	})
	return &focusMQPipeline{
		streamConsumer: streamConsumer,
		streamHandler:  fmq.NewStreamMessageHandler(messageService, logger),
	}
}

func newFocusHealthChecks(db *gorm.DB, dataValkey bootstrap.DataValkeyClient, mqValkey bootstrap.MQValkeyClient) map[string]health.Check {
	ping := func(client valkey.Client) health.Check {
		return func(ctx context.Context) error { return valkeyx.Ping(ctx, client) }
	}
	return map[string]health.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"valkey_data": ping(dataValkey.Client),
		"valkey_mq":   ping(mqValkey.Client),
	}
}

func newFocusHTTPServer(cfg *config.Config, services *focusServices, checks map[string]health.Check, logger *slog.Logger) *http.Server {
	handler := httpapi.NewHandler(httpapi.Deps{
		Ledger:      services.ledger,
		Stats:       services.stats,
		Maintenance: services.maintenance,
		APIKey:      cfg.Admin.APIKey,
		Checks:      checks,
		Logger:      logger,
	})
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return httpserver.NewServer(addr, handler, httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
	})
}

func newFocusServerApp(
	logger *slog.Logger,
	server *http.Server,
	mqPipeline *focusMQPipeline,
	scanner *service.Scanner,
) *bootstrap.ServerApp {
	return bootstrap.NewServerApp(
		config.BotName,
		logger,
		server,
		shutdownTimeout,
		bootstrap.BackgroundTask{
			Name:        "mq_consumer",
			ErrorLogKey: "mq_consumer_failed",
			Run: func(ctx context.Context) error {
				return mqPipeline.streamConsumer.Run(ctx, mqPipeline.streamHandler.HandleStreamMessage)
			},
		},
		bootstrap.BackgroundTask{
			Name:        "scanner",
			ErrorLogKey: "scanner_failed",
			Run:         scanner.Run,
		},
	)
}
