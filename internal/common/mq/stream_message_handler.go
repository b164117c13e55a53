package mq

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
)

// DefaultHandleTimeout: 메시지 하나를 처리하는 최대 시간
const DefaultHandleTimeout = 30 * time.Second

// InboundMessageHandler: 파싱된 채팅 메시지를 처리한다.
type InboundMessageHandler interface {
	HandleMessage(ctx context.Context, message mqmsg.InboundMessage)
}

// StreamMessageHandler: 스트림 엔트리를 InboundMessage 로 바꿔 넘긴다.
// 잘못된 엔트리는 로그만 남기고 ACK 하며, 핸들러 panic 은 엔트리 하나로 가둔다.
type StreamMessageHandler struct {
	handler InboundMessageHandler
	timeout time.Duration
	logger  *slog.Logger
}

// StreamHandlerOption: StreamMessageHandler 옵션
type StreamHandlerOption func(*StreamMessageHandler)

// WithHandleTimeout: 메시지별 처리 제한 시간. 0 이하이면 기본값.
func WithHandleTimeout(timeout time.Duration) StreamHandlerOption {
	return func(h *StreamMessageHandler) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// NewStreamMessageHandler 는 StreamMessageHandler 를 만든다.
func NewStreamMessageHandler(handler InboundMessageHandler, logger *slog.Logger, opts ...StreamHandlerOption) *StreamMessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &StreamMessageHandler{handler: handler, timeout: DefaultHandleTimeout, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleStreamMessage: HandlerFunc 시그니처에 맞춘 어댑터
func (h *StreamMessageHandler) HandleStreamMessage(ctx context.Context, message XMessage) (err error) {
	inbound, parseErr := mqmsg.ParseInboundMessage(message.Values)
	if parseErr != nil {
		h.logger.Warn("message_parsing_failed", "id", message.ID, "err", parseErr)
		return nil
	}
	if h.handler == nil {
		return nil
	}
	if inbound.DeliveryID == "" {
		inbound.DeliveryID = message.ID
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("message_handler_panic",
				"id", message.ID,
				"chat_id", inbound.ChatID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	handleCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.logger.Debug("message_received", "id", message.ID, "chat_id", inbound.ChatID, "user_id", inbound.UserID)
	h.handler.HandleMessage(handleCtx, inbound)
	return nil
}
