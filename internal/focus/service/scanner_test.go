package service

import (
	"context"
	"slices"
	"testing"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

func TestScannerSkipResilience(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustJoin(t, "g", "u", model.ModeB)
	f.advance(4500) // 2.5 cycles without any tick

	report, err := f.scanner.ScanOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.CreditedCycles != 2 {
		t.Fatalf("credited = %d, want 2", report.CreditedCycles)
	}
	stats, _ := f.stats.GetUserStats(ctx, "g", "u")
	if stats.TotalWorkB != 3000 || stats.PauseTimeB != 600 || stats.SessionsCount != 0 {
		t.Errorf("stats = %+v", stats)
	}

	report, _ = f.scanner.ScanOnce(ctx)
	if report.CreditedCycles != 0 {
		t.Errorf("repeat scan credited %d cycles", report.CreditedCycles)
	}
}

func TestScannerNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustJoin(t, "g", "u", model.ModeA)
	f.advance(100)
	if _, err := f.scanner.ScanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	f.advance(3000) // break
	if _, err := f.scanner.ScanOnce(ctx); err != nil {
		t.Fatal(err)
	}
	f.advance(600) // next cycle
	if _, err := f.scanner.ScanOnce(ctx); err != nil {
		t.Fatal(err)
	}

	want := []model.NotificationKind{model.NotifyBreakStarted, model.NotifyCycleStarted}
	if got := f.notifier.kinds(); !slices.Equal(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}

	if _, err := f.ledger.Leave(ctx, "g", "u"); err != nil {
		t.Fatal(err)
	}
	if obs, _ := f.observations.Get(ctx, "g", "u"); obs != nil {
		t.Errorf("observation must be cleared on leave: %+v", obs)
	}
}

func TestScannerLease(t *testing.T) {
	f := newFixture(t)
	s := NewScanner(f.repo, cycle.DefaultTable(), f.clock, nil, staticLease{granted: false}, nil, ScannerConfig{}, testhelper.DiscardLogger())

	report, err := s.ScanOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !report.Skipped {
		t.Error("scan must be skipped without the lease")
	}
}

func TestScannerRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.scanner.Run(ctx); err != nil {
		t.Fatalf("run = %v", err)
	}
}

func TestScannerSessionFaultsDoNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, u := range []string{"ok1", "ok2", "bad"} {
		f.mustJoin(t, "g", u, model.ModeA)
	}
	f.advance(3700) // 1 cycle done
	failed := f.failWritesFor(t, "bad", -1)
	f.notifier.failOn = "ok2"

	report, err := f.scanner.ScanOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 3 || report.CreditedCycles != 2 || report.SessionFailures != 1 {
		t.Fatalf("report = %+v, want scanned 3, credited 2, failures 1", report)
	}
	if report.Notifications != 1 {
		t.Errorf("notifications = %d, want 1 (ok2 notifier failure is not counted)", report.Notifications)
	}
	if failed.Load() == 0 {
		t.Fatal("write fault was never hit")
	}

	for u, want := range map[string]int64{"ok1": 1, "ok2": 1, "bad": 0} {
		s, err := f.repo.FindActiveSession(ctx, "g", u)
		if err != nil {
			t.Fatal(err)
		}
		if s == nil || s.CreditedCycles != want || s.Flagged {
			t.Errorf("%s session = %+v, want credited %d", u, s, want)
		}
	}
	stats, err := f.stats.GetUserStats(ctx, "g", "bad")
	if err != nil {
		t.Fatal(err)
	}
	if stats != nil && stats.TotalTime != 0 {
		t.Errorf("rolled back credit leaked into stats: %+v", stats)
	}
}
