package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
)

// LedgerConfig: 원장 설정
type LedgerConfig struct {
	// CommitTimeout: 요청 취소와 분리된 정산 트랜잭션의 제한 시간
	CommitTimeout time.Duration
	// ForceEndRetries: 일괄 종료 시 행별 재시도 횟수
	ForceEndRetries  int
	ForceEndBackoff  time.Duration
	ForceEndMaxDelay time.Duration
}

// DefaultLedgerConfig: 10초, 3회, 100ms 부터 최대 2초
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		CommitTimeout:    10 * time.Second,
		ForceEndRetries:  3,
		ForceEndBackoff:  100 * time.Millisecond,
		ForceEndMaxDelay: 2 * time.Second,
	}
}

// Ledger: 진행 중 세션의 생성과 종료를 관리한다. 종료 시 남은 시간을 정산한다.
type Ledger struct {
	repo         *repository.Repository
	table        cycle.Table
	clock        clock.Clock
	observations ObservationStore
	cfg          LedgerConfig
	logger       *slog.Logger
}

// NewLedger: 새로운 Ledger 인스턴스를 생성한다. observations 는 nil 일 수 있다.
func NewLedger(
	repo *repository.Repository,
	table cycle.Table,
	clk clock.Clock,
	observations ObservationStore,
	cfg LedgerConfig,
	logger *slog.Logger,
) *Ledger {
	def := DefaultLedgerConfig()
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = def.CommitTimeout
	}
	if cfg.ForceEndRetries < 0 {
		cfg.ForceEndRetries = 0
	}
	if cfg.ForceEndBackoff <= 0 {
		cfg.ForceEndBackoff = def.ForceEndBackoff
	}
	if cfg.ForceEndMaxDelay <= 0 {
		cfg.ForceEndMaxDelay = def.ForceEndMaxDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		repo:         repo,
		table:        table,
		clock:        clk,
		observations: observations,
		cfg:          cfg,
		logger:       logger,
	}
}

// Table: 주기 설정
func (l *Ledger) Table() cycle.Table { return l.table }

// Join: 세션을 시작한다. 점검 중이면 JoinMaintenance, 이미 있으면 JoinAlreadyActive.
func (l *Ledger) Join(ctx context.Context, guildID, userID string, mode model.Mode) (model.JoinResult, error) {
	if _, err := l.table.Lookup(mode); err != nil {
		return 0, err
	}
	now := l.clock.Now()

	result := model.JoinAlreadyActive
	err := l.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cfg, err := tx.LockGuildConfig(ctx, guildID, now)
		if err != nil {
			return err
		}
		if cfg.Maintenance {
			result = model.JoinMaintenance
			return nil
		}
		created, err := tx.InsertActiveSession(ctx, model.ActiveSession{
			GuildID:        guildID,
			UserID:         userID,
			StartTimestamp: now.Unix(),
			Mode:           mode,
		}, now)
		if err != nil {
			return err
		}
		if created {
			result = model.JoinCreated
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("session_join",
		slog.String("guild_id", guildID),
		slog.String("user_id", userID),
		slog.String("mode", string(mode)),
		slog.String("result", result.String()),
	)
	return result, nil
}

// Leave: 세션을 끝내고 남은 시간을 정산한다. 세션이 없으면 LeaveNotActive.
func (l *Ledger) Leave(ctx context.Context, guildID, userID string) (model.LeaveResult, error) {
	commitCtx, cancel := l.commitContext(ctx)
	defer cancel()

	summary, ended, err := l.endOne(commitCtx, guildID, userID, nil)
	if err != nil {
		return model.LeaveResult{}, err
	}
	if !ended {
		return model.LeaveResult{Status: model.LeaveNotActive}, nil
	}
	l.afterEnd(ctx, summary, "leave")
	return model.LeaveResult{Status: model.LeaveEnded, Summary: summary}, nil
}

// Status: 진행 중 세션과 현재 주기 상태. 세션이 없으면 nil.
func (l *Ledger) Status(ctx context.Context, guildID, userID string) (*model.ActiveSessionInfo, error) {
	s, err := l.repo.FindActiveSession(ctx, guildID, userID)
	if err != nil || s == nil {
		return nil, err
	}
	info := l.describe(*s, l.clock.Now().Unix())
	return &info, nil
}

// ListActive: 길드의 진행 중 세션과 주기 상태 (읽기 전용)
func (l *Ledger) ListActive(ctx context.Context, guildID string) ([]model.ActiveSessionInfo, error) {
	sessions, err := l.repo.ListActiveSessions(ctx, guildID)
	if err != nil {
		return nil, err
	}
	now := l.clock.Now().Unix()
	out := make([]model.ActiveSessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, l.describe(s, now))
	}
	return out, nil
}

// ForceEndAll: 길드의 모든 세션을 행 단위로 끝낸다. 한 행의 실패는 재시도 후 기록만 하고 다음 행으로 넘어간다.
func (l *Ledger) ForceEndAll(ctx context.Context, guildID string) (model.ForceEndReport, error) {
	sessions, err := l.repo.ListActiveSessions(ctx, guildID)
	if err != nil {
		return model.ForceEndReport{}, err
	}

	report := model.ForceEndReport{Ended: make([]model.SessionSummary, 0, len(sessions))}
	for _, s := range sessions {
		expected := s
		var (
			summary model.SessionSummary
			ended   bool
		)
		op := func() error {
			commitCtx, cancel := l.commitContext(ctx)
			defer cancel()
			var err error
			summary, ended, err = l.endOne(commitCtx, expected.GuildID, expected.UserID, &expected.StartTimestamp)
			return err
		}
		notify := func(err error, wait time.Duration) {
			l.logger.Warn("force_end_retry",
				slog.String("guild_id", guildID),
				slog.String("user_id", expected.UserID),
				slog.Duration("wait", wait),
				slog.Any("error", err),
			)
		}
		if err := backoff.RetryNotify(op, l.forceEndPolicy(ctx), notify); err != nil {
			l.logger.Error("force_end_failed",
				slog.String("guild_id", guildID),
				slog.String("user_id", expected.UserID),
				slog.Any("error", err),
			)
			report.Failed = append(report.Failed, expected.UserID)
			continue
		}
		if ended {
			l.afterEnd(ctx, summary, "force_end")
			report.Ended = append(report.Ended, summary)
		}
	}

	l.logger.Info("force_end_all_done",
		slog.String("guild_id", guildID),
		slog.Int("ended", len(report.Ended)),
		slog.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (l *Ledger) forceEndPolicy(ctx context.Context) backoff.BackOffContext {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = l.cfg.ForceEndBackoff
	expo.MaxInterval = l.cfg.ForceEndMaxDelay
	expo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(l.cfg.ForceEndRetries)), ctx)
}

// endOne: 행 읽기, 삭제, 정산을 한 트랜잭션으로 처리한다.
// expectedStart 가 주어지면 시작 시각이 같은 행만 끝낸다.
func (l *Ledger) endOne(ctx context.Context, guildID, userID string, expectedStart *int64) (model.SessionSummary, bool, error) {
	now := l.clock.Now()

	var (
		summary model.SessionSummary
		ended   bool
	)
	err := l.repo.WithTx(ctx, func(tx *repository.Repository) error {
		s, err := tx.LockActiveSession(ctx, guildID, userID)
		if err != nil || s == nil {
			return err
		}
		if expectedStart != nil && s.StartTimestamp != *expectedStart {
			return nil
		}
		deleted, err := tx.DeleteActiveSession(ctx, guildID, userID, s.StartTimestamp)
		if err != nil || !deleted {
			return err
		}
		summary, err = l.settle(ctx, tx, *s, now)
		if err != nil {
			return err
		}
		ended = true
		return nil
	})
	if err != nil {
		return model.SessionSummary{}, false, err
	}
	return summary, ended, nil
}

// settle: 아직 반영되지 않은 완료 주기와 마지막 부분 주기를 반영하고 세션 전체 요약을 만든다.
// 플래그가 있거나 모드를 알 수 없거나 시계가 이미 반영된 주기보다 뒤로 간 세션은
// 남은 시간을 반영하지 않고 세션 수만 올린다.
func (l *Ledger) settle(ctx context.Context, tx *repository.Repository, s model.ActiveSession, now time.Time) (model.SessionSummary, error) {
	summary := model.SessionSummary{
		GuildID:        s.GuildID,
		UserID:         s.UserID,
		Mode:           s.Mode,
		StartTimestamp: s.StartTimestamp,
	}

	d, lookupErr := l.table.Lookup(s.Mode)
	if lookupErr != nil {
		return l.settleUncredited(ctx, tx, s, summary, nil, now, lookupErr)
	}
	if s.Flagged {
		return l.settleUncredited(ctx, tx, s, summary, &d, now, nil)
	}
	state, err := cycle.Compute(l.table, s.StartTimestamp, s.Mode, now.Unix())
	if err != nil {
		return l.settleUncredited(ctx, tx, s, summary, &d, now, err)
	}
	if state.CompletedCycles < s.CreditedCycles {
		skew := &ferrors.InvalidIntervalError{Start: s.StartTimestamp + s.CreditedCycles*d.Length(), Now: now.Unix()}
		return l.settleUncredited(ctx, tx, s, summary, &d, now, skew)
	}

	elapsed := state.Elapsed
	cycles, workRem, pauseRem := cycle.Split(d, elapsed)
	if err := creditFullCycles(ctx, tx, s, d, s.CreditedCycles, cycles, now); err != nil {
		return model.SessionSummary{}, err
	}

	tailStart := s.StartTimestamp + cycles*d.Length()
	if err := tx.RecordCompletedCycle(ctx, repository.CycleRecord{
		GuildID:        s.GuildID,
		UserID:         s.UserID,
		Mode:           s.Mode,
		WorkTime:       workRem,
		PauseTime:      pauseRem,
		StartTimestamp: tailStart,
		EndTimestamp:   s.StartTimestamp + elapsed,
		SessionEnd:     true,
		At:             now,
	}); err != nil {
		return model.SessionSummary{}, err
	}
	if err := tx.CommitPartial(ctx, repository.PartialCommit{
		GuildID:       s.GuildID,
		UserID:        s.UserID,
		Mode:          s.Mode,
		Elapsed:       workRem,
		SessionEnd:    true,
		SessionLength: elapsed,
		At:            now,
	}); err != nil {
		return model.SessionSummary{}, err
	}

	summary.Cycles = cycles
	summary.WorkTime = cycles*d.Work + workRem
	summary.PauseTime = cycles*d.Break + pauseRem
	summary.TotalElapsed = elapsed
	return summary, nil
}

// settleUncredited: 이미 반영된 주기만 요약에 담고 세션 종료만 기록한다. d 가 nil 이면 모드를 모르는 경우.
func (l *Ledger) settleUncredited(
	ctx context.Context,
	tx *repository.Repository,
	s model.ActiveSession,
	summary model.SessionSummary,
	d *cycle.Durations,
	now time.Time,
	cause error,
) (model.SessionSummary, error) {
	if d != nil {
		summary.Cycles = s.CreditedCycles
		summary.WorkTime = s.CreditedCycles * d.Work
		summary.PauseTime = s.CreditedCycles * d.Break
	}
	summary.TotalElapsed = summary.WorkTime + summary.PauseTime
	l.logger.Warn("session_end_uncredited",
		slog.String("guild_id", s.GuildID),
		slog.String("user_id", s.UserID),
		slog.Bool("flagged", s.Flagged),
		slog.Int64("credited_cycles", s.CreditedCycles),
		slog.Int64("elapsed", now.Unix()-s.StartTimestamp),
		slog.Any("error", cause),
	)
	err := tx.CommitPartial(ctx, repository.PartialCommit{
		GuildID:       s.GuildID,
		UserID:        s.UserID,
		Mode:          s.Mode,
		SessionEnd:    true,
		SessionLength: summary.TotalElapsed,
		At:            now,
	})
	return summary, err
}

func (l *Ledger) afterEnd(ctx context.Context, summary model.SessionSummary, reason string) {
	l.logger.Info("session_end",
		slog.String("guild_id", summary.GuildID),
		slog.String("user_id", summary.UserID),
		slog.String("reason", reason),
		slog.Int64("work", summary.WorkTime),
		slog.Int64("pause", summary.PauseTime),
		slog.Int64("cycles", summary.Cycles),
	)
	if l.observations == nil {
		return
	}
	if err := l.observations.Clear(ctx, summary.GuildID, summary.UserID); err != nil {
		l.logger.Warn("scan_observation_clear_failed",
			slog.String("guild_id", summary.GuildID),
			slog.String("user_id", summary.UserID),
			slog.Any("error", err),
		)
	}
}

func (l *Ledger) describe(s model.ActiveSession, now int64) model.ActiveSessionInfo {
	info := model.ActiveSessionInfo{Session: s}
	state, err := cycle.Compute(l.table, s.StartTimestamp, s.Mode, now)
	if err != nil {
		info.StateErr = err
		return info
	}
	info.Phase = state.Phase
	info.Remaining = state.Remaining
	info.CompletedCycles = state.CompletedCycles
	info.Elapsed = state.Elapsed
	return info
}

func (l *Ledger) commitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), l.cfg.CommitTimeout)
}
