package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
)

// ScannerConfig: 스캐너 설정
type ScannerConfig struct {
	Interval       time.Duration
	Concurrency    int
	SessionTimeout time.Duration
	CommitTimeout  time.Duration
}

// DefaultScannerConfig: 60초 주기, 동시 8개, 세션당 15초
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Interval:       60 * time.Second,
		Concurrency:    8,
		SessionTimeout: 15 * time.Second,
		CommitTimeout:  10 * time.Second,
	}
}

// ScanReport: 한 번의 스캔 결과
type ScanReport struct {
	Skipped         bool // 임대를 얻지 못함
	Scanned         int
	CreditedCycles  int64
	Flagged         int
	UnknownMode     int
	Notifications   int
	SessionFailures int
}

// Scanner: 주기적으로 진행 중 세션을 훑어 완료 주기를 반영하고 전환 알림을 보낸다.
type Scanner struct {
	repo     *repository.Repository
	table    cycle.Table
	clock    clock.Clock
	store    ObservationStore
	lease    Lease
	notifier Notifier
	cfg      ScannerConfig
	logger   *slog.Logger
}

// NewScanner: 새로운 Scanner 인스턴스를 생성한다. lease, notifier 는 nil 일 수 있다.
func NewScanner(
	repo *repository.Repository,
	table cycle.Table,
	clk clock.Clock,
	store ObservationStore,
	lease Lease,
	notifier Notifier,
	cfg ScannerConfig,
	logger *slog.Logger,
) *Scanner {
	def := DefaultScannerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = def.SessionTimeout
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = def.CommitTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		repo:     repo,
		table:    table,
		clock:    clk,
		store:    store,
		lease:    lease,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run: ctx 가 끝날 때까지 Interval 마다 스캔한다. 시작 직후 한 번 스캔한다.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("scanner_started", slog.Duration("interval", s.cfg.Interval))
	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			s.releaseLease()
			s.logger.Info("scanner_stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scanner) tick(ctx context.Context) {
	started := time.Now()
	report, err := s.ScanOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("scanner_tick_failed", slog.Any("error", err))
		}
		return
	}
	if report.Skipped {
		s.logger.Debug("scanner_tick_skipped")
		return
	}
	s.logger.Debug("scanner_tick_done",
		slog.Int("scanned", report.Scanned),
		slog.Int64("credited_cycles", report.CreditedCycles),
		slog.Int("flagged", report.Flagged),
		slog.Int("notifications", report.Notifications),
		slog.Int("failures", report.SessionFailures),
		slog.Duration("took", time.Since(started)),
	)
}

func (s *Scanner) releaseLease() {
	if s.lease == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.lease.Release(ctx); err != nil {
		s.logger.Warn("scanner_lease_release_failed", slog.Any("error", err))
	}
}

// ScanOnce: 한 번 스캔한다. 세션별 에러는 로그와 집계만 남기고 나머지 세션은 계속 처리한다.
func (s *Scanner) ScanOnce(ctx context.Context) (ScanReport, error) {
	if s.lease != nil {
		ok, err := s.lease.Acquire(ctx)
		if err != nil {
			return ScanReport{}, err
		}
		if !ok {
			return ScanReport{Skipped: true}, nil
		}
	}

	sessions, err := s.repo.ListScannableSessions(ctx)
	if err != nil {
		return ScanReport{}, err
	}

	var (
		mu     sync.Mutex
		report = ScanReport{Scanned: len(sessions)}
	)
	now := s.clock.Now()

	p := pool.New().WithMaxGoroutines(s.cfg.Concurrency)
	for _, sess := range sessions {
		p.Go(func() {
			sessionCtx, cancel := context.WithTimeout(ctx, s.cfg.SessionTimeout)
			defer cancel()

			out, err := s.scanSession(sessionCtx, sess, now)
			if err != nil {
				s.logger.Warn("scanner_session_failed",
					slog.String("guild_id", sess.GuildID),
					slog.String("user_id", sess.UserID),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.CreditedCycles += out.credited
			report.Notifications += out.notified
			if out.flagged {
				report.Flagged++
			}
			if out.unknownMode {
				report.UnknownMode++
			}
			if err != nil {
				report.SessionFailures++
			}
		})
	}
	p.Wait()

	return report, nil
}

type sessionOutcome struct {
	credited    int64
	notified    int
	flagged     bool
	unknownMode bool
}

func (s *Scanner) scanSession(ctx context.Context, sess model.ActiveSession, now time.Time) (sessionOutcome, error) {
	var out sessionOutcome

	state, err := cycle.Compute(s.table, sess.StartTimestamp, sess.Mode, now.Unix())
	if err != nil {
		var unknown *ferrors.UnknownModeError
		if errors.As(err, &unknown) {
			out.unknownMode = true
			s.logger.Warn("scanner_unknown_mode",
				slog.String("guild_id", sess.GuildID),
				slog.String("user_id", sess.UserID),
				slog.String("mode", string(sess.Mode)),
			)
			return out, nil
		}
		var invalid *ferrors.InvalidIntervalError
		if errors.As(err, &invalid) {
			if flagErr := s.repo.FlagActiveSession(ctx, sess.GuildID, sess.UserID, sess.StartTimestamp); flagErr != nil {
				return out, flagErr
			}
			out.flagged = true
			s.logger.Error("scanner_session_flagged",
				slog.String("guild_id", sess.GuildID),
				slog.String("user_id", sess.UserID),
				slog.Int64("start", invalid.Start),
				slog.Int64("now", invalid.Now),
			)
			return out, nil
		}
		return out, err
	}

	prev := s.lastObservation(ctx, sess)

	switch {
	case state.CompletedCycles > sess.CreditedCycles:
		credited, err := s.creditCycles(ctx, sess, state.CompletedCycles, now)
		if err != nil {
			return out, err
		}
		out.credited = credited
		if credited > 0 && s.notify(ctx, sess, model.NotifyCycleStarted, state) {
			out.notified++
		}
	case prev != nil && prev.Phase == model.PhaseWork && state.Phase == model.PhaseBreak &&
		prev.CompletedCycles == state.CompletedCycles:
		if s.notify(ctx, sess, model.NotifyBreakStarted, state) {
			out.notified++
		}
	}

	if s.store != nil {
		obs := model.ScanObservation{
			StartTimestamp:  sess.StartTimestamp,
			Phase:           state.Phase,
			CompletedCycles: state.CompletedCycles,
			ObservedAt:      now,
		}
		if err := s.store.Put(ctx, sess.GuildID, sess.UserID, obs); err != nil {
			s.logger.Warn("scan_observation_put_failed",
				slog.String("guild_id", sess.GuildID),
				slog.String("user_id", sess.UserID),
				slog.Any("error", err),
			)
		}
	}
	return out, nil
}

func (s *Scanner) lastObservation(ctx context.Context, sess model.ActiveSession) *model.ScanObservation {
	if s.store == nil {
		return nil
	}
	prev, err := s.store.Get(ctx, sess.GuildID, sess.UserID)
	if err != nil {
		s.logger.Warn("scan_observation_get_failed",
			slog.String("guild_id", sess.GuildID),
			slog.String("user_id", sess.UserID),
			slog.Any("error", err),
		)
		return nil
	}
	// 같은 사용자의 이전 세션 관측은 무시한다.
	if prev == nil || prev.StartTimestamp != sess.StartTimestamp {
		return nil
	}
	return prev
}

// creditCycles: credited_cycles 를 CAS 로 올리고 그 사이 주기들을 같은 트랜잭션에서 반영한다.
// 다른 호출자가 먼저 세션을 끝냈거나 반영했으면 0 을 반환한다.
func (s *Scanner) creditCycles(ctx context.Context, sess model.ActiveSession, completed int64, now time.Time) (int64, error) {
	d, err := s.table.Lookup(sess.Mode)
	if err != nil {
		return 0, err
	}
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CommitTimeout)
	defer cancel()

	var credited int64
	err = s.repo.WithTx(commitCtx, func(tx *repository.Repository) error {
		ok, err := tx.AdvanceCreditedCycles(commitCtx, sess.GuildID, sess.UserID, sess.StartTimestamp, sess.CreditedCycles, completed)
		if err != nil || !ok {
			return err
		}
		if err := creditFullCycles(commitCtx, tx, sess, d, sess.CreditedCycles, completed, now); err != nil {
			return err
		}
		credited = completed - sess.CreditedCycles
		return nil
	})
	if err != nil {
		return 0, err
	}
	return credited, nil
}

func (s *Scanner) notify(ctx context.Context, sess model.ActiveSession, kind model.NotificationKind, state cycle.State) bool {
	if s.notifier == nil {
		return false
	}
	n := model.Notification{
		GuildID:         sess.GuildID,
		UserID:          sess.UserID,
		Kind:            kind,
		Mode:            sess.Mode,
		CompletedCycles: state.CompletedCycles,
		Remaining:       state.Remaining,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("scanner_notify_failed",
			slog.String("guild_id", sess.GuildID),
			slog.String("user_id", sess.UserID),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return false
	}
	return true
}
