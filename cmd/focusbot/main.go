package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/health"
	fapp "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/app"
	fconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
)

// Version: 빌드 시 ldflags로 주입됨 (예: -ldflags="-X main.Version=1.0.0")
var Version = "dev"

func main() {
	health.Init(Version)

	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	finalLogger, err := bootstrap.RunBotEntrypoint(
		context.Background(),
		logger,
		"focus-bot.log",
		fconfig.LoadFromEnv,
		func(cfg *fconfig.Config) fconfig.LogConfig { return cfg.Log },
		fapp.Initialize,
	)
	if err != nil {
		logger = finalLogger
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
