package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

func TestLedgerJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown mode is rejected before storage", func(t *testing.T) {
		var unknown *ferrors.UnknownModeError
		if _, err := f.ledger.Join(ctx, "g", "u", model.Mode("C")); !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownModeError, got %v", err)
		}
		if info, _ := f.ledger.Status(ctx, "g", "u"); info != nil {
			t.Fatal("no session must be created")
		}
	})

	t.Run("second join reports already active", func(t *testing.T) {
		f.mustJoin(t, "g", "u", model.ModeA)
		res, err := f.ledger.Join(ctx, "g", "u", model.ModeB)
		if err != nil || res != model.JoinAlreadyActive {
			t.Fatalf("join = %s, %v", res, err)
		}
		info, _ := f.ledger.Status(ctx, "g", "u")
		if info == nil || info.Session.Mode != model.ModeA {
			t.Fatalf("existing session must be untouched: %+v", info)
		}
	})

	t.Run("concurrent joins create one row", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := f.ledger.Join(ctx, "g", "racer", model.ModeB)
				if err != nil {
					t.Error(err)
					return
				}
				if res == model.JoinCreated {
					mu.Lock()
					created++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if created != 1 {
			t.Errorf("created = %d, want 1", created)
		}
	})
}

func TestLedgerLeaveRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustJoin(t, "g", "u", model.ModeB)
	f.advance(1000)

	res, err := f.ledger.Leave(ctx, "g", "u")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != model.LeaveEnded {
		t.Fatalf("status = %v", res.Status)
	}
	if s := res.Summary; s.WorkTime != 1000 || s.PauseTime != 0 || s.TotalElapsed != 1000 || s.Cycles != 0 {
		t.Errorf("summary = %+v", s)
	}

	again, err := f.ledger.Leave(ctx, "g", "u")
	if err != nil || again.Status != model.LeaveNotActive {
		t.Fatalf("second leave = %+v, %v", again, err)
	}

	stats, _ := f.stats.GetUserStats(ctx, "g", "u")
	if stats == nil {
		t.Fatal("stats missing")
	}
	if stats.TotalTime != 1000 || stats.TotalWorkB != 1000 || stats.SessionsCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestConservationAcrossScannerAndLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustJoin(t, "g", "u", model.ModeA)
	f.advance(2*3600 + 1800)
	report, err := f.scanner.ScanOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.CreditedCycles != 2 {
		t.Fatalf("credited = %d, want 2", report.CreditedCycles)
	}

	f.advance(2000) // elapsed 11000: 3 full cycles + 200s of work
	res, err := f.ledger.Leave(ctx, "g", "u")
	if err != nil {
		t.Fatal(err)
	}
	s := res.Summary
	if s.Cycles != 3 || s.WorkTime != 9200 || s.PauseTime != 1800 || s.TotalElapsed != 11000 {
		t.Errorf("summary = %+v", s)
	}
	if s.WorkTime+s.PauseTime != s.TotalElapsed {
		t.Errorf("summary does not add up: %+v", s)
	}

	stats, _ := f.stats.GetUserStats(ctx, "g", "u")
	if got := stats.TotalTime + stats.PauseTimeA + stats.PauseTimeB; got != 11000 {
		t.Errorf("credited %d seconds, want 11000 (%+v)", got, stats)
	}
	if stats.SessionsCount != 1 || stats.LongestSession != 11000 {
		t.Errorf("session-end fields = %+v", stats)
	}

	records, err := f.repo.ListSessionRecords(ctx, "g", "u")
	if err != nil {
		t.Fatal(err)
	}
	var sum int64
	ends := 0
	for _, r := range records {
		sum += r.WorkTime + r.PauseTime
		if r.IsSessionEnd {
			ends++
		}
	}
	if len(records) != 4 || sum != 11000 || ends != 1 {
		t.Errorf("records = %d sum=%d ends=%d", len(records), sum, ends)
	}
}

func TestLeaveUncreditedSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	future := model.ActiveSession{GuildID: "g", UserID: "skew", StartTimestamp: now.Unix() + 100, Mode: model.ModeA}
	unknown := model.ActiveSession{GuildID: "g", UserID: "legacy", StartTimestamp: now.Unix() - 5000, Mode: model.Mode("C")}
	for _, s := range []model.ActiveSession{future, unknown} {
		if _, err := f.repo.InsertActiveSession(ctx, s, now); err != nil {
			t.Fatal(err)
		}
	}

	report, err := f.scanner.ScanOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Flagged != 1 || report.UnknownMode != 1 || report.CreditedCycles != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report, _ = f.scanner.ScanOnce(ctx); report.Scanned != 1 {
		t.Errorf("flagged row must leave the scan set, scanned=%d", report.Scanned)
	}

	for _, user := range []string{"skew", "legacy"} {
		res, err := f.ledger.Leave(ctx, "g", user)
		if err != nil {
			t.Fatal(err)
		}
		if res.Status != model.LeaveEnded || res.Summary.TotalElapsed != 0 {
			t.Errorf("%s leave = %+v", user, res)
		}
		stats, _ := f.stats.GetUserStats(ctx, "g", user)
		if stats == nil || stats.SessionsCount != 1 || stats.TotalTime != 0 {
			t.Errorf("%s stats = %+v", user, stats)
		}
	}
}

func TestListActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustJoin(t, "g", "u1", model.ModeA)
	f.advance(3599)
	f.mustJoin(t, "g", "u2", model.ModeB)

	infos, err := f.ledger.ListActive(ctx, "g")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %+v", infos)
	}
	first := infos[0]
	if first.Session.UserID != "u1" || first.Phase != model.PhaseBreak || first.Remaining != 1 || first.CompletedCycles != 0 {
		t.Errorf("u1 = %+v", first)
	}
	if infos[1].Phase != model.PhaseWork || infos[1].Remaining != 1500 {
		t.Errorf("u2 = %+v", infos[1])
	}
}

func TestLeaveAfterClockRegression(t *testing.T) {
	tests := []struct {
		name   string
		rewind int64
	}{
		{"behind credited cycles", 3000}, // elapsed 4200, 1 cycle < 2 credited
		{"before session start", 8000},   // elapsed -800
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			f.mustJoin(t, "g", "u", model.ModeA)
			f.advance(7200)
			if report, err := f.scanner.ScanOnce(ctx); err != nil || report.CreditedCycles != 2 {
				t.Fatalf("scan = %+v, %v", report, err)
			}

			f.advance(-tt.rewind)
			res, err := f.ledger.Leave(ctx, "g", "u")
			if err != nil {
				t.Fatal(err)
			}
			s := res.Summary
			if res.Status != model.LeaveEnded || s.Cycles != 2 || s.WorkTime != 6000 || s.PauseTime != 1200 || s.TotalElapsed != 7200 {
				t.Fatalf("summary = %+v", s)
			}

			stats, _ := f.stats.GetUserStats(ctx, "g", "u")
			if stats.TotalTime != 6000 || stats.TotalWorkA != 6000 || stats.PauseTimeA != 1200 {
				t.Errorf("only scanner-credited cycles may count, stats = %+v", stats)
			}
			if stats.SessionsCount != 1 {
				t.Errorf("sessions_count = %d", stats.SessionsCount)
			}

			records, err := f.repo.ListSessionRecords(ctx, "g", "u")
			if err != nil {
				t.Fatal(err)
			}
			var sum int64
			for _, r := range records {
				sum += r.WorkTime + r.PauseTime
			}
			if len(records) != 2 || sum != 7200 {
				t.Errorf("records = %d sum=%d, want 2 records totalling 7200", len(records), sum)
			}
		})
	}
}

func TestForceEndAllRetriesFailedRows(t *testing.T) {
	cases := []struct {
		name       string
		faults     int32
		wantFailed []string
		wantEnded  int
		wantLeft   int
	}{
		{name: "transient fault is retried", faults: 1, wantEnded: 3},
		{name: "persistent fault is reported", faults: -1, wantFailed: []string{"bad"}, wantEnded: 2, wantLeft: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			ledger := NewLedger(f.repo, cycle.DefaultTable(), f.clock, f.observations, LedgerConfig{
				ForceEndRetries:  2,
				ForceEndBackoff:  time.Millisecond,
				ForceEndMaxDelay: time.Millisecond,
			}, testhelper.DiscardLogger())

			for _, u := range []string{"a", "bad", "c"} {
				f.mustJoin(t, "g", u, model.ModeA)
				f.advance(10)
			}
			f.advance(1000)
			failed := f.failWritesFor(t, "bad", tc.faults)

			report, err := ledger.ForceEndAll(ctx, "g")
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(report.Failed, tc.wantFailed) {
				t.Errorf("failed = %v, want %v", report.Failed, tc.wantFailed)
			}
			if len(report.Ended) != tc.wantEnded {
				t.Fatalf("ended = %d, want %d", len(report.Ended), tc.wantEnded)
			}
			for _, s := range report.Ended {
				if s.WorkTime == 0 {
					t.Errorf("%s ended without work time: %+v", s.UserID, s)
				}
			}

			wantFaults := tc.faults
			if tc.faults < 0 {
				wantFaults = 3 // 첫 시도 + 재시도 2회
			}
			if got := failed.Load(); got != wantFaults {
				t.Errorf("faulted attempts = %d, want %d", got, wantFaults)
			}

			left, err := f.repo.ListActiveSessions(ctx, "g")
			if err != nil {
				t.Fatal(err)
			}
			if len(left) != tc.wantLeft {
				t.Fatalf("left = %+v, want %d rows", left, tc.wantLeft)
			}
			if tc.wantLeft == 1 && left[0].UserID != "bad" {
				t.Errorf("left = %+v, want only bad", left)
			}
		})
	}
}
