package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"
)

// StreamPublisherConfig: 발행 대상 스트림과 근사 최대 길이
type StreamPublisherConfig struct {
	Stream string
	MaxLen int64
}

// StreamPublisher: XADD 로 메시지를 발행한다.
type StreamPublisher struct {
	client valkey.Client
	logger *slog.Logger
	cfg    StreamPublisherConfig
}

// NewStreamPublisher 는 StreamPublisher 를 만든다.
func NewStreamPublisher(client valkey.Client, logger *slog.Logger, cfg StreamPublisherConfig) *StreamPublisher {
	return &StreamPublisher{client: client, logger: logger, cfg: cfg}
}

// Publish: values 에 현재 trace context 를 덧붙여 XADD 한다. MaxLen 이 있으면 MAXLEN ~ 로 자른다.
func (p *StreamPublisher) Publish(ctx context.Context, values map[string]string) (string, error) {
	if len(values) == 0 {
		return "", errors.New("no values to publish")
	}

	carrier := telemetry.MapCarrier{}
	telemetry.InjectContext(ctx, carrier)

	args := make([]string, 0, 4+2*(len(values)+len(carrier)))
	if p.cfg.MaxLen > 0 {
		args = append(args, "MAXLEN", "~", strconv.FormatInt(p.cfg.MaxLen, 10))
	}
	args = append(args, "*")
	for k, v := range values {
		args = append(args, k, v)
	}
	for k, v := range carrier {
		if _, taken := values[k]; !taken {
			args = append(args, k, v)
		}
	}

	cmd := p.client.B().Arbitrary("XADD").Keys(p.cfg.Stream).Args(args...).Build()
	id, err := p.client.Do(ctx, cmd).ToString()
	if err != nil {
		return "", valkeyx.WrapRedisError("xadd", fmt.Errorf("stream=%s: %w", p.cfg.Stream, err))
	}

	p.logger.Debug("message_published", "stream", p.cfg.Stream, "id", id)
	return id, nil
}

// PublishOutbound: PublishFunc 시그니처에 맞춘 응답/알림 발행
func (p *StreamPublisher) PublishOutbound(ctx context.Context, message mqmsg.OutboundMessage) error {
	if _, err := p.Publish(ctx, message.ToStreamValues()); err != nil {
		return fmt.Errorf("publish %s message to chat %s failed: %w", message.Type, message.ChatID, err)
	}
	return nil
}
