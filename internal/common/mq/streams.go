package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"
	"github.com/valkey-io/valkey-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"
)

// StreamConsumerConfig: Consumer Group 소비자 설정
type StreamConsumerConfig struct {
	Stream string
	Group  string
	Name   string

	BatchSize   int64
	Block       time.Duration
	Concurrency int

	ResetGroupOnStartup bool
	AckOnError          bool
	AckMaxRetries       int
	AckRetryDelay       time.Duration
	GroupStartFrom      string

	// 읽기 실패 시 재시도 간격
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// XMessage: 스트림 엔트리
type XMessage struct {
	ID     string
	Values map[string]string
}

// HandlerFunc: 메시지 하나를 처리한다. nil 이 아닌 에러면 AckOnError 설정에 따라 ACK 를 생략한다.
type HandlerFunc func(ctx context.Context, msg XMessage) error

// StreamConsumer: XREADGROUP 루프와 동시 처리 워커를 관리한다.
type StreamConsumer struct {
	client valkey.Client
	logger *slog.Logger
	cfg    StreamConsumerConfig
}

// NewStreamConsumer 는 StreamConsumer 를 만든다.
func NewStreamConsumer(client valkey.Client, logger *slog.Logger, cfg StreamConsumerConfig) *StreamConsumer {
	return &StreamConsumer{client: client, logger: logger, cfg: cfg}
}

// Run: ctx 가 취소될 때까지 메시지를 읽어 handler 로 넘긴다. 진행 중인 핸들러는 기다린 뒤 반환한다.
func (c *StreamConsumer) Run(ctx context.Context, handler HandlerFunc) error {
	cfg, err := c.normalizedConfig()
	if err != nil {
		return err
	}
	if cfg.ResetGroupOnStartup {
		err = c.resetGroup(ctx, cfg)
	} else {
		err = c.ensureGroup(ctx, cfg)
	}
	if err != nil {
		return err
	}

	workers := pool.New().WithMaxGoroutines(cfg.Concurrency)
	defer workers.Wait()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = cfg.BackoffInitial
	retry.MaxInterval = cfg.BackoffMax
	retry.MaxElapsedTime = 0

	for ctx.Err() == nil {
		messages, err := c.readBatch(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if valkeyx.IsNil(err) || errors.Is(err, context.DeadlineExceeded) {
				retry.Reset()
				continue
			}
			if isNoGroupOrNoStream(err) {
				c.logger.Info("consumer_group_missing_recreating", "stream", cfg.Stream, "group", cfg.Group)
				recreateErr := c.ensureGroup(ctx, cfg)
				if recreateErr == nil {
					retry.Reset()
					continue
				}
				c.logger.Warn("consumer_group_recreate_failed", "err", recreateErr, "stream", cfg.Stream)
			}

			delay := retry.NextBackOff()
			c.logger.Warn("xreadgroup_failed", "err", err, "stream", cfg.Stream, "group", cfg.Group, "backoff", delay)
			if !sleepWithContext(ctx, delay) {
				return nil
			}
			continue
		}
		retry.Reset()

		for _, msg := range messages {
			if ctx.Err() != nil {
				return nil
			}
			workers.Go(func() {
				c.handleMessage(ctx, cfg, msg, handler)
			})
		}
	}
	return nil
}

func (c *StreamConsumer) readBatch(ctx context.Context, cfg StreamConsumerConfig) ([]XMessage, error) {
	cmd := c.client.B().Xreadgroup().
		Group(cfg.Group, cfg.Name).
		Count(cfg.BatchSize).
		Block(cfg.Block.Milliseconds()).
		Streams().Key(cfg.Stream).Id(">").
		Build()

	result, err := c.client.Do(ctx, cmd).AsXRead()
	if err != nil {
		return nil, fmt.Errorf("xreadgroup failed: %w", err)
	}

	entries := result[cfg.Stream]
	messages := make([]XMessage, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, XMessage{ID: entry.ID, Values: entry.FieldValues})
	}
	return messages, nil
}

func (c *StreamConsumer) handleMessage(ctx context.Context, cfg StreamConsumerConfig, msg XMessage, handler HandlerFunc) {
	parentCtx := telemetry.ExtractContext(ctx, telemetry.MapCarrier(msg.Values))
	spanCtx, span := otel.Tracer("focus-bot-go/valkey-consumer").Start(parentCtx, "Valkey.ProcessMessage",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "valkey"),
			attribute.String("messaging.destination", cfg.Stream),
			attribute.String("messaging.message_id", msg.ID),
			attribute.String("messaging.consumer_group", cfg.Group),
		),
	)
	defer span.End()

	if err := handler(spanCtx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(spanCtx, "message_handler_failed", "err", err, "stream", cfg.Stream, "id", msg.ID)
		if !cfg.AckOnError {
			return
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if err := c.ack(spanCtx, cfg, msg.ID); err != nil {
		c.logger.WarnContext(spanCtx, "xack_failed", "err", err, "stream", cfg.Stream, "id", msg.ID)
	}
}

func (c *StreamConsumer) ack(ctx context.Context, cfg StreamConsumerConfig, id string) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.AckRetryDelay), uint64(cfg.AckMaxRetries-1)),
		ctx,
	)
	return backoff.Retry(func() error {
		return c.client.Do(ctx, c.client.B().Xack().Key(cfg.Stream).Group(cfg.Group).Id(id).Build()).Error()
	}, policy)
}

func (c *StreamConsumer) normalizedConfig() (StreamConsumerConfig, error) {
	cfg := c.cfg
	cfg.Stream = strings.TrimSpace(cfg.Stream)
	cfg.Group = strings.TrimSpace(cfg.Group)
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Stream == "" || cfg.Group == "" || cfg.Name == "" {
		return StreamConsumerConfig{}, errors.New("stream/group/name must be set")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if cfg.AckMaxRetries <= 0 {
		cfg.AckMaxRetries = 1
	}
	if cfg.AckRetryDelay <= 0 {
		cfg.AckRetryDelay = 100 * time.Millisecond
	}
	if strings.TrimSpace(cfg.GroupStartFrom) == "" {
		cfg.GroupStartFrom = "$"
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 30 * time.Second
	}
	return cfg, nil
}

func (c *StreamConsumer) ensureGroup(ctx context.Context, cfg StreamConsumerConfig) error {
	cmd := c.client.B().XgroupCreate().Key(cfg.Stream).Group(cfg.Group).Id(cfg.GroupStartFrom).Mkstream().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil && !valkeyx.IsBusyGroup(err) {
		return fmt.Errorf("xgroup create failed stream=%s group=%s: %w", cfg.Stream, cfg.Group, err)
	}
	return nil
}

func (c *StreamConsumer) resetGroup(ctx context.Context, cfg StreamConsumerConfig) error {
	cmd := c.client.B().XgroupDestroy().Key(cfg.Stream).Group(cfg.Group).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil && !isNoGroupOrNoStream(err) {
		return fmt.Errorf("xgroup destroy failed stream=%s group=%s: %w", cfg.Stream, cfg.Group, err)
	}
	return c.ensureGroup(ctx, cfg)
}

func isNoGroupOrNoStream(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return valkeyx.IsNoGroup(err) ||
		strings.Contains(strings.ToLower(msg), "no such key") ||
		strings.Contains(msg, "requires the key to exist")
}

func sleepWithContext(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
