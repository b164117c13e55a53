package service

import (
	"context"
	"time"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
)

// StatsAggregator: 통계 반영을 각각 독립 트랜잭션으로 실행한다.
// 원장과 스캐너는 자신의 트랜잭션 안에서 같은 반영 함수를 직접 호출한다.
type StatsAggregator struct {
	repo  *repository.Repository
	clock clock.Clock
}

// NewStatsAggregator: 새로운 StatsAggregator 인스턴스를 생성한다.
func NewStatsAggregator(repo *repository.Repository, clk clock.Clock) *StatsAggregator {
	return &StatsAggregator{repo: repo, clock: clk}
}

// CommitPartial: 집중 시간을 반영한다. isSessionEnd 일 때만 세션 수가 오른다.
func (a *StatsAggregator) CommitPartial(ctx context.Context, guildID, userID string, elapsed int64, mode model.Mode, isSessionEnd bool) error {
	return a.repo.CommitPartial(ctx, repository.PartialCommit{
		GuildID:       guildID,
		UserID:        userID,
		Mode:          mode,
		Elapsed:       elapsed,
		SessionEnd:    isSessionEnd,
		SessionLength: elapsed,
		At:            a.clock.Now(),
	})
}

// RecordCompletedCycle: 주기 기록을 추가하고 휴식 합계를 올린다.
func (a *StatsAggregator) RecordCompletedCycle(ctx context.Context, guildID, userID string, mode model.Mode, work, pause, startTs, endTs int64) error {
	return a.repo.RecordCompletedCycle(ctx, repository.CycleRecord{
		GuildID:        guildID,
		UserID:         userID,
		Mode:           mode,
		WorkTime:       work,
		PauseTime:      pause,
		StartTimestamp: startTs,
		EndTimestamp:   endTs,
		At:             a.clock.Now(),
	})
}

// creditFullCycles: [from, to) 번째 주기를 완료 주기로 반영한다. tx 안에서 호출한다.
func creditFullCycles(ctx context.Context, tx *repository.Repository, s model.ActiveSession, d cycle.Durations, from, to int64, at time.Time) error {
	for k := from; k < to; k++ {
		if err := tx.CommitPartial(ctx, repository.PartialCommit{
			GuildID: s.GuildID,
			UserID:  s.UserID,
			Mode:    s.Mode,
			Elapsed: d.Work,
			At:      at,
		}); err != nil {
			return err
		}
		cycleStart := s.StartTimestamp + k*d.Length()
		if err := tx.RecordCompletedCycle(ctx, repository.CycleRecord{
			GuildID:        s.GuildID,
			UserID:         s.UserID,
			Mode:           s.Mode,
			WorkTime:       d.Work,
			PauseTime:      d.Break,
			StartTimestamp: cycleStart,
			EndTimestamp:   cycleStart + d.Length(),
			At:             at,
		}); err != nil {
			return err
		}
	}
	return nil
}
