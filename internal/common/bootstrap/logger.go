package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
)

// NewLogger: stdout 으로 출력하는 tint 로거. trace_id/span_id 를 함께 남긴다.
func NewLogger() *slog.Logger {
	return slog.New(NewOTelHandler(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	})))
}

// EnableFileLogging: stdout, 서비스별 파일, combined.log 에 동시에 기록하는 로거를 만들고 기본 로거로 등록한다.
func EnableFileLogging(cfg commonconfig.LogConfig, fileName string, enableOTel bool) (*slog.Logger, error) {
	logDir := strings.TrimSpace(cfg.Dir)
	if logDir == "" {
		return nil, nil
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	rotating := func(name string, sizeMB int) *lumberjack.Logger {
		return &lumberjack.Logger{
			Filename:   filepath.Join(logDir, name),
			MaxSize:    sizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}
	serviceLog := rotating(fileName, cfg.MaxSizeMB)
	combinedLog := rotating("combined.log", cfg.MaxSizeMB*3)

	var handler slog.Handler = tint.NewHandler(io.MultiWriter(os.Stdout, serviceLog, combinedLog), &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    true,
	})
	if enableOTel {
		handler = NewOTelHandler(handler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("file_logging_enabled",
		slog.String("path", serviceLog.Filename),
		slog.String("combined", combinedLog.Filename),
	)
	return logger, nil
}
