package mq

import (
	"context"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/textutil"
)

// PublishFunc: 응답 메시지 하나를 발행한다.
type PublishFunc func(ctx context.Context, msg mqmsg.OutboundMessage) error

// SendFinalChunked: 긴 응답을 길이 제한에 맞게 나눠 보낸다. 마지막 청크만 final 이다.
func SendFinalChunked(ctx context.Context, publish PublishFunc, chatID, text string, threadID *string, maxLength int) error {
	chunks := textutil.ChunkByLines(text, maxLength)
	if len(chunks) == 0 {
		return publish(ctx, mqmsg.NewFinal(chatID, "", threadID))
	}
	last := len(chunks) - 1
	for idx, chunk := range chunks {
		msg := mqmsg.NewWaiting(chatID, chunk, threadID)
		if idx == last {
			msg = mqmsg.NewFinal(chatID, chunk, threadID)
		}
		if err := publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// MessageSender: 메시지 템플릿 조회와 분할 발행을 묶는다.
type MessageSender struct {
	msgProvider *messageprovider.Provider
	publish     PublishFunc
	maxLength   int
}

// NewMessageSender 는 MessageSender 를 만든다.
func NewMessageSender(msgProvider *messageprovider.Provider, publish PublishFunc, maxLength int) *MessageSender {
	return &MessageSender{msgProvider: msgProvider, publish: publish, maxLength: maxLength}
}

// SendFinal: 분할 전송
func (s *MessageSender) SendFinal(ctx context.Context, chatID, text string, threadID *string) error {
	return SendFinalChunked(ctx, s.publish, chatID, text, threadID, s.maxLength)
}

// SendKey: 템플릿 키를 렌더링해 final 로 보낸다.
func (s *MessageSender) SendKey(ctx context.Context, chatID string, threadID *string, key string, params ...messageprovider.Param) error {
	return s.SendFinal(ctx, chatID, s.msgProvider.Get(key, params...), threadID)
}

// SendError: 템플릿 키를 렌더링해 error 타입으로 보낸다.
func (s *MessageSender) SendError(ctx context.Context, chatID string, threadID *string, key string, params ...messageprovider.Param) error {
	return s.publish(ctx, mqmsg.NewError(chatID, s.msgProvider.Get(key, params...), threadID))
}

// Messages: 템플릿 제공자
func (s *MessageSender) Messages() *messageprovider.Provider {
	return s.msgProvider
}
