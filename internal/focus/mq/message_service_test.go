package mq

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
)

func TestFocusMessageService_JoinStatusLeave(t *testing.T) {
	f := newMQFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	f.svc.HandleMessage(ctx, inbound("room1", "u1", "민수", "/집중 참가 B"))
	out := f.published.take()
	if len(out) != 1 || !strings.Contains(out[0].Text, "민수님, B 모드로 집중을 시작했어요") {
		t.Fatalf("join reply = %+v", out)
	}
	if out[0].Type != mqmsg.OutboundFinal || out[0].ChatID != "room1" {
		t.Errorf("unexpected outbound %+v", out[0])
	}

	f.clock.Advance(1000 * time.Second)
	f.svc.HandleMessage(ctx, inbound("room1", "u1", "민수", "/집중 상태"))
	out = f.published.take()
	if len(out) != 1 || !strings.Contains(out[0].Text, "집중 중") || !strings.Contains(out[0].Text, "8분 20초") {
		t.Fatalf("status reply = %+v", out)
	}

	f.svc.HandleMessage(ctx, inbound("room1", "u1", "민수", "/집중 종료"))
	out = f.published.take()
	if len(out) != 1 || !strings.Contains(out[0].Text, "집중 16분 40초") {
		t.Fatalf("leave reply = %+v", out)
	}

	stats, err := f.stats.GetUserStats(ctx, "room1", "u1")
	if err != nil || stats == nil {
		t.Fatalf("stats = %v, %v", stats, err)
	}
	if stats.TotalTime != 1000 || stats.TotalWorkB != 1000 || stats.SessionsCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if name := f.stats.DisplayName(ctx, "room1", "u1", "?"); name != "민수" {
		t.Errorf("display name = %q", name)
	}
}

func TestFocusMessageService_DuplicateDropped(t *testing.T) {
	f := newMQFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	msg := inbound("room1", "u1", "", "/집중 참가 A")
	msg.DeliveryID = "1700000000000-0"
	f.svc.HandleMessage(ctx, msg)
	f.svc.HandleMessage(ctx, msg)

	if out := f.published.take(); len(out) != 1 {
		t.Fatalf("expected one reply for duplicate delivery, got %d", len(out))
	}
}

func TestFocusMessageService_RepeatedCommandsAreNotDeduplicated(t *testing.T) {
	f := newMQFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	steps := []string{"/집중 참가 A", "/집중 종료", "/집중 참가 A", "/집중 상태", "/집중 상태"}
	for i, content := range steps {
		msg := inbound("room1", "u1", "", content)
		msg.DeliveryID = fmt.Sprintf("1700000000000-%d", i)
		f.svc.HandleMessage(ctx, msg)
	}
	if out := f.published.take(); len(out) != len(steps) {
		t.Fatalf("replies = %d, want %d", len(out), len(steps))
	}

	info, err := f.ledger.Status(ctx, "room1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if info == nil {
		t.Fatal("rejoin after leave must create a new session")
	}

	// 전달 ID 가 없으면 중복 판단을 하지 않는다.
	f.svc.HandleMessage(ctx, inbound("room1", "u1", "", "/집중 상태"))
	f.svc.HandleMessage(ctx, inbound("room1", "u1", "", "/집중 상태"))
	if out := f.published.take(); len(out) != 2 {
		t.Fatalf("status replies = %d, want 2", len(out))
	}
}

func TestFocusMessageService_Errors(t *testing.T) {
	f := newMQFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	tests := []struct {
		content string
		want    string
		typ     mqmsg.OutboundType
	}{
		{"/집중 참가 C", "알 수 없는 모드예요: C", mqmsg.OutboundError},
		{"/집중 랭킹 version", "알 수 없는 랭킹 기준이에요: version", mqmsg.OutboundError},
		{"/집중 점검 켜기", "관리자만 사용할 수 있는 명령이에요.", mqmsg.OutboundError},
		{"/집중 종료", "지금 집중 중이 아니에요", mqmsg.OutboundFinal},
		{"/집중 참가", "사용법: /집중 참가 A", mqmsg.OutboundFinal},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			f.svc.HandleMessage(ctx, inbound("room1", "u2", "", tt.content))
			out := f.published.take()
			if len(out) != 1 {
				t.Fatalf("expected 1 reply, got %d", len(out))
			}
			if out[0].Type != tt.typ || !strings.Contains(out[0].Text, tt.want) {
				t.Errorf("reply = %+v, want %q (%s)", out[0], tt.want, tt.typ)
			}
		})
	}
}

func TestFocusMessageService_AdminMaintenance(t *testing.T) {
	f := newMQFixture(t, commonconfig.AccessConfig{})
	ctx := context.Background()

	f.svc.HandleMessage(ctx, inbound("room1", "u1", "", "/집중 참가 A"))
	f.svc.HandleMessage(ctx, inbound("room1", "u2", "", "/집중 참가 B"))
	f.published.take()

	f.clock.Advance(10 * time.Second)
	f.svc.HandleMessage(ctx, inbound("room1", "admin", "", "/집중 점검 켜기"))
	out := f.published.take()
	if len(out) != 1 || !strings.Contains(out[0].Text, "세션 2개") {
		t.Fatalf("maintenance reply = %+v", out)
	}

	f.svc.HandleMessage(ctx, inbound("room1", "u3", "", "/집중 참가 A"))
	if out := f.published.take(); len(out) != 1 || !strings.Contains(out[0].Text, "점검 중") {
		t.Fatalf("join during maintenance = %+v", out)
	}

	f.svc.HandleMessage(ctx, inbound("room1", "admin", "", "/집중 점검 끄기"))
	f.svc.HandleMessage(ctx, inbound("room1", "admin", "", "/집중 설정 채널 알림방"))
	out = f.published.take()
	if len(out) != 2 || !strings.Contains(out[1].Text, "알림방") {
		t.Fatalf("config reply = %+v", out)
	}
	cfg, err := f.guilds.Get(ctx, "room1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Maintenance || cfg.PomodoroChannel != "알림방" {
		t.Errorf("guild config = %+v", cfg)
	}
}

func TestFocusMessageService_AccessControl(t *testing.T) {
	f := newMQFixture(t, commonconfig.AccessConfig{
		Enabled:        true,
		AllowedChatIDs: []string{"room1"},
		BlockedUserIDs: []string{"bad"},
	})
	ctx := context.Background()

	f.svc.HandleMessage(ctx, inbound("room2", "u1", "", "/집중 참가 A"))
	if out := f.published.take(); len(out) != 0 {
		t.Fatalf("denied chat must be silent, got %+v", out)
	}

	f.svc.HandleMessage(ctx, inbound("room1", "bad", "", "/집중 참가 A"))
	out := f.published.take()
	if len(out) != 1 || out[0].Text != "차단된 사용자예요." {
		t.Fatalf("blocked user reply = %+v", out)
	}
	if info, _ := f.ledger.Status(ctx, "room1", "bad"); info != nil {
		t.Error("blocked user must not join")
	}
}
