package assets

import (
	"strings"
	"testing"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/textutil"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/messages"
)

func TestFocusMessagesYAML_Parses(t *testing.T) {
	provider, err := messageprovider.NewFromYAMLAtPath(FocusMessagesYAML, "focus")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for _, key := range []string{
		messages.Help, messages.JoinCreated, messages.LeaveSummary, messages.StatusActive,
		messages.PhaseWork, messages.PhaseBreak, messages.StatsHeader, messages.LeaderboardItem,
		messages.MaintenanceOn, messages.MaintenanceOff, messages.NotifyCycleStarted,
		messages.NotifyBreakStarted, messages.ErrorGeneric, messages.UnitSecond,
		messages.LeaderboardMetricPrefix + "longest_session",
	} {
		if !provider.Has(key) {
			t.Errorf("missing message key %q", key)
		}
	}
}

func TestHelpMessage_NotChunked(t *testing.T) {
	provider, err := messageprovider.NewFromYAMLAtPath(FocusMessagesYAML, "focus")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	help := provider.Get(messages.Help, messageprovider.P("prefix", "/집중"))
	if strings.Contains(help, "{prefix}") {
		t.Fatal("prefix placeholder not replaced")
	}
	if chunks := textutil.ChunkByLines(help, config.KakaoMessageMaxLength); len(chunks) != 1 {
		t.Fatalf("expected help message to be 1 chunk, got %d", len(chunks))
	}
}

func TestLuaScriptsEmbedded(t *testing.T) {
	if !strings.Contains(LeaseAcquireLua, "PEXPIRE") || !strings.Contains(LeaseReleaseLua, "DEL") {
		t.Fatal("lease scripts not embedded")
	}
}
