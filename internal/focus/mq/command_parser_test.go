package mq

import (
	"testing"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/messages"
)

func TestCommandParser_Parse(t *testing.T) {
	p := NewCommandParser("")

	tests := []struct {
		input string
		want  Command
	}{
		{"/집중", Command{Kind: CommandHelp}},
		{"/집중 help", Command{Kind: CommandHelp}},
		{"/집중 참가 A", Command{Kind: CommandJoin, Mode: "A", Usage: messages.JoinUsage}},
		{"/집중 join b", Command{Kind: CommandJoin, Mode: "b", Usage: messages.JoinUsage}},
		{"/집중 참가", Command{Kind: CommandJoin, Usage: messages.JoinUsage}},
		{"/집중 종료", Command{Kind: CommandLeave}},
		{"/집중 LEAVE", Command{Kind: CommandLeave}},
		{"/집중 상태", Command{Kind: CommandStatus}},
		{"/집중 전적", Command{Kind: CommandUserStats}},
		{"/집중 랭킹", Command{Kind: CommandLeaderboard}},
		{"/집중 top Streak_Best", Command{Kind: CommandLeaderboard, Metric: "streak_best"}},
		{"/집중 점검 켜기", Command{Kind: CommandMaintenance, Enable: true, Usage: messages.MaintenanceUsage}},
		{"/집중 maintenance off", Command{Kind: CommandMaintenance, Usage: messages.MaintenanceUsage}},
		{"/집중 점검", Command{Kind: CommandUnknown, Usage: messages.MaintenanceUsage}},
		{"/집중 설정 채널 공지방", Command{Kind: CommandConfig, Field: ConfigFieldChannel, Value: "공지방", Usage: messages.ConfigUsage}},
		{"/집중 config role_b 뽀모도로 B", Command{Kind: CommandConfig, Field: ConfigFieldRoleB, Value: "뽀모도로 B", Usage: messages.ConfigUsage}},
		{"/집중 설정 역할C x", Command{Kind: CommandUnknown, Usage: messages.ConfigUsage}},
		{"/집중 초기화", Command{Kind: CommandReset}},
		{"/집중 춤추기", Command{Kind: CommandUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input)
			if got == nil {
				t.Fatal("expected command, got nil")
			}
			if *got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestCommandParser_IgnoresOtherMessages(t *testing.T) {
	p := NewCommandParser("/focus")
	for _, input := range []string{"", "안녕하세요", "/집중 참가 A", "  "} {
		if cmd := p.Parse(input); cmd != nil {
			t.Errorf("Parse(%q) = %+v, want nil", input, *cmd)
		}
	}
	if cmd := p.Parse("/focus join a"); cmd == nil || cmd.Kind != CommandJoin {
		t.Errorf("custom prefix not honoured: %+v", cmd)
	}
}

func TestCommand_RequiresAdmin(t *testing.T) {
	for kind, want := range map[CommandKind]bool{
		CommandJoin:        false,
		CommandLeaderboard: false,
		CommandMaintenance: true,
		CommandConfig:      true,
		CommandReset:       true,
	} {
		if got := (Command{Kind: kind}).RequiresAdmin(); got != want {
			t.Errorf("kind %d: RequiresAdmin = %v", kind, got)
		}
	}
}
