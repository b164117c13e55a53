package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
)

// ConfigLoader: 설정 로더
type ConfigLoader[C any] func() (*C, error)

// LogConfigGetter: 설정에서 파일 로그 설정을 꺼낸다.
type LogConfigGetter[C any] func(*C) commonconfig.LogConfig

// AppInitializer: 앱을 조립하고 정리 함수를 돌려준다.
type AppInitializer[C any] func(context.Context, *C, *slog.Logger) (*ServerApp, func(), error)

// RunBotEntrypoint: .env 로드, 설정 로드, 파일 로깅, 앱 조립, 실행 순으로 진행한다.
func RunBotEntrypoint[C any](
	ctx context.Context,
	logger *slog.Logger,
	logFileName string,
	loadConfig ConfigLoader[C],
	getLogConfig LogConfigGetter[C],
	initialize AppInitializer[C],
) (*slog.Logger, error) {
	if err := commonconfig.LoadDotenvIfPresent(); err != nil {
		return logger, fmt.Errorf("load dotenv failed: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return logger, fmt.Errorf("load config failed: %w", err)
	}

	if getLogConfig != nil {
		if logCfg := getLogConfig(cfg); strings.TrimSpace(logCfg.Dir) != "" {
			fileLogger, logErr := EnableFileLogging(logCfg, logFileName, true)
			if logErr != nil {
				return logger, fmt.Errorf("enable file logging failed: %w", logErr)
			}
			if fileLogger != nil {
				logger = fileLogger
			}
		}
	}

	serverApp, cleanup, err := initialize(ctx, cfg, logger)
	if err != nil {
		return logger, fmt.Errorf("initialize app failed: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := serverApp.Run(ctx); err != nil {
		return logger, fmt.Errorf("run app failed: %w", err)
	}
	return logger, nil
}
