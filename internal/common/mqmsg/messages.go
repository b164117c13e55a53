// Package mqmsg 는 채팅 게이트웨이와 주고받는 스트림 메시지 형식을 정의한다.
package mqmsg

import (
	"errors"
	"strings"
)

// 인바운드 파싱 에러.
var (
	ErrMissingChatID  = errors.New("missing chat id")
	ErrMissingContent = errors.New("missing content")
	ErrMissingUserID  = errors.New("missing user id")
)

// InboundMessage: 채팅방에서 들어온 사용자 메시지
type InboundMessage struct {
	ChatID   string
	UserID   string
	Content  string
	ThreadID *string
	Sender   *string
	// DeliveryID: 게이트웨이 메시지 ID, 없으면 스트림 엔트리 ID. 재전송 판별 기준.
	DeliveryID string
}

// SenderName: 발신자 표시 이름, 없으면 fallback
func (m InboundMessage) SenderName(fallback string) string {
	if m.Sender != nil && *m.Sender != "" {
		return *m.Sender
	}
	return fallback
}

// OutboundType: 응답 메시지 종류
type OutboundType string

// OutboundType 값.
const (
	OutboundWaiting OutboundType = "waiting"
	OutboundFinal   OutboundType = "final"
	OutboundError   OutboundType = "error"
)

// OutboundMessage: 봇이 채팅방으로 보내는 메시지
type OutboundMessage struct {
	ChatID   string
	Text     string
	ThreadID *string
	Type     OutboundType
}

// NewWaiting: 이어지는 메시지가 남은 중간 응답
func NewWaiting(chatID, text string, threadID *string) OutboundMessage {
	return OutboundMessage{ChatID: chatID, Text: text, ThreadID: threadID, Type: OutboundWaiting}
}

// NewFinal: 최종 응답
func NewFinal(chatID, text string, threadID *string) OutboundMessage {
	return OutboundMessage{ChatID: chatID, Text: text, ThreadID: threadID, Type: OutboundFinal}
}

// NewError: 에러 안내 응답
func NewError(chatID, text string, threadID *string) OutboundMessage {
	return OutboundMessage{ChatID: chatID, Text: text, ThreadID: threadID, Type: OutboundError}
}

// ToStreamValues: XADD 필드 맵으로 변환한다.
func (m OutboundMessage) ToStreamValues() map[string]string {
	values := map[string]string{
		"chatId": m.ChatID,
		"text":   m.Text,
		"type":   string(m.Type),
	}
	if m.ThreadID != nil {
		if threadID := strings.TrimSpace(*m.ThreadID); threadID != "" {
			values["threadId"] = threadID
		}
	}
	return values
}

// ParseInboundMessage: 스트림 필드(room/text/userId/sender/threadId/messageId)에서 인바운드 메시지를 만든다.
func ParseInboundMessage(fields map[string]string) (InboundMessage, error) {
	field := func(name string) string { return strings.TrimSpace(fields[name]) }
	optional := func(name string) *string {
		if v := field(name); v != "" {
			return &v
		}
		return nil
	}

	msg := InboundMessage{
		ChatID:   field("room"),
		UserID:   field("userId"),
		Content:  field("text"),
		ThreadID: optional("threadId"),
		Sender:   optional("sender"),

		DeliveryID: field("messageId"),
	}
	switch {
	case msg.ChatID == "":
		return InboundMessage{}, ErrMissingChatID
	case msg.Content == "":
		return InboundMessage{}, ErrMissingContent
	case msg.UserID == "":
		return InboundMessage{}, ErrMissingUserID
	}
	return msg, nil
}
