package mqmsg

import (
	"errors"
	"testing"
)

func TestParseInboundMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		msg, err := ParseInboundMessage(map[string]string{
			"room": " room1 ", "text": "/집중 참가 A", "userId": "u1", "sender": "민지",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.ChatID != "room1" || msg.Content != "/집중 참가 A" {
			t.Errorf("unexpected message: %+v", msg)
		}
		if msg.ThreadID != nil {
			t.Error("threadId should be nil when absent")
		}
		if msg.SenderName("?") != "민지" {
			t.Errorf("unexpected sender %q", msg.SenderName("?"))
		}
		if msg.DeliveryID != "" {
			t.Errorf("delivery id should be empty when absent, got %q", msg.DeliveryID)
		}
	})

	t.Run("gateway message id", func(t *testing.T) {
		msg, err := ParseInboundMessage(map[string]string{
			"room": "room1", "text": "/집중", "userId": "u1", "messageId": "kakao-42",
		})
		if err != nil {
			t.Fatal(err)
		}
		if msg.DeliveryID != "kakao-42" {
			t.Errorf("delivery id = %q", msg.DeliveryID)
		}
	})

	tests := []struct {
		name   string
		fields map[string]string
		want   error
	}{
		{"missing room", map[string]string{"text": "x", "userId": "u"}, ErrMissingChatID},
		{"missing text", map[string]string{"room": "r", "userId": "u"}, ErrMissingContent},
		{"missing user", map[string]string{"room": "r", "text": "x"}, ErrMissingUserID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInboundMessage(tt.fields); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOutboundToStreamValues(t *testing.T) {
	blank := "  "
	values := NewFinal("room1", "hi", &blank).ToStreamValues()
	if _, ok := values["threadId"]; ok {
		t.Error("blank threadId must be omitted")
	}
	if values["type"] != "final" || values["chatId"] != "room1" {
		t.Errorf("unexpected values: %v", values)
	}
}
