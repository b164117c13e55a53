package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/httpserver"
)

// BackgroundTask: 서버와 함께 실행되는 장기 작업
type BackgroundTask struct {
	Name        string
	ErrorLogKey string
	Run         func(ctx context.Context) error
}

// RunHTTPServer: SIGINT/SIGTERM 또는 작업 하나의 실패까지 서버와 백그라운드 작업을 함께 돌린다.
func RunHTTPServer(
	ctx context.Context,
	logger *slog.Logger,
	bot string,
	server *http.Server,
	shutdownTimeout time.Duration,
	tasks ...BackgroundTask,
) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)
	for _, task := range tasks {
		if task.Run == nil {
			continue
		}
		g.Go(func() error { return runTask(gctx, logger, task) })
	}

	logger.Info("server_start", "bot", bot, "addr", server.Addr, "tasks", len(tasks))
	g.Go(func() error {
		if err := httpserver.Serve(gctx, server, shutdownTimeout); err != nil {
			return fmt.Errorf("http server serve failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		return fmt.Errorf("run http server failed: %w", err)
	}
	logger.Info("server_stopped", "bot", bot)
	return nil
}

// runTask: 작업 하나를 실행한다. 취소로 끝나면 정상 종료로 본다.
func runTask(ctx context.Context, logger *slog.Logger, task BackgroundTask) error {
	logger.Info("background_task_started", "task", task.Name)
	err := task.Run(ctx)
	if err == nil || (ctx.Err() != nil && errors.Is(err, context.Canceled)) {
		logger.Info("background_task_stopped", "task", task.Name)
		return nil
	}

	logKey := task.ErrorLogKey
	if logKey == "" {
		logKey = "background_task_failed"
	}
	logger.Error(logKey, "task", task.Name, "err", err)
	return fmt.Errorf("%s failed: %w", task.Name, err)
}
