package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// PartialCommit: 집중 시간 반영 파라미터
type PartialCommit struct {
	GuildID    string
	UserID     string
	Mode       model.Mode
	Elapsed    int64
	SessionEnd bool
	// SessionLength: 세션 전체 길이. SessionEnd 일 때 최장 기록 갱신에 쓴다.
	SessionLength int64
	At            time.Time
}

// CycleRecord: 완료 주기 (또는 종료 시 남은 부분) 기록 파라미터
type CycleRecord struct {
	GuildID        string
	UserID         string
	Mode           model.Mode
	WorkTime       int64
	PauseTime      int64
	StartTimestamp int64
	EndTimestamp   int64
	SessionEnd     bool
	At             time.Time
}

// CommitPartial: total_time 과 모드별 집중 합계를 올린다.
// SessionEnd 이면 세션 수, 최장 세션, 첫/마지막 세션 시각, 연속 기록도 갱신한다.
func (r *Repository) CommitPartial(ctx context.Context, p PartialCommit) error {
	if p.Elapsed < 0 {
		return &ferrors.NegativeDurationError{Field: "elapsed", Value: p.Elapsed}
	}
	if p.SessionLength < 0 {
		return &ferrors.NegativeDurationError{Field: "session_length", Value: p.SessionLength}
	}
	return r.WithTx(ctx, func(tx *Repository) error {
		stats, err := tx.lockOrCreateStats(ctx, p.GuildID, p.UserID, p.At)
		if err != nil {
			return err
		}

		stats.TotalTime += p.Elapsed
		switch p.Mode {
		case model.ModeB:
			stats.TotalWorkB += p.Elapsed
		default:
			stats.TotalWorkA += p.Elapsed
		}

		if p.SessionEnd {
			at := p.At
			stats.SessionsCount++
			stats.LongestSession = max(stats.LongestSession, p.SessionLength)
			if stats.FirstSessionAt == nil {
				stats.FirstSessionAt = &at
			}
			stats.StreakCurrent = tx.streak.Next(stats.StreakCurrent, stats.LastSessionAt, at)
			stats.StreakBest = max(stats.StreakBest, stats.StreakCurrent)
			stats.LastSessionAt = &at
		}
		return tx.saveStats(ctx, stats, p.At)
	})
}

// RecordCompletedCycle: SessionRecord 를 추가하고 모드별 휴식 합계를 올린다.
func (r *Repository) RecordCompletedCycle(ctx context.Context, c CycleRecord) error {
	if c.WorkTime < 0 {
		return &ferrors.NegativeDurationError{Field: "work_time", Value: c.WorkTime}
	}
	if c.PauseTime < 0 {
		return &ferrors.NegativeDurationError{Field: "pause_time", Value: c.PauseTime}
	}
	return r.WithTx(ctx, func(tx *Repository) error {
		started := time.Unix(c.StartTimestamp, 0).In(tx.location())
		record := SessionRecord{
			GuildID:        c.GuildID,
			UserID:         c.UserID,
			Mode:           string(c.Mode),
			WorkTime:       c.WorkTime,
			PauseTime:      c.PauseTime,
			StartTimestamp: c.StartTimestamp,
			EndTimestamp:   c.EndTimestamp,
			DayOfWeek:      int(started.Weekday()),
			HourOfDay:      started.Hour(),
			IsSessionEnd:   c.SessionEnd,
			CreatedAt:      c.At,
		}
		if err := tx.db.WithContext(ctx).Create(&record).Error; err != nil {
			return dbErr("insert_session_record", err)
		}

		stats, err := tx.lockOrCreateStats(ctx, c.GuildID, c.UserID, c.At)
		if err != nil {
			return err
		}
		switch c.Mode {
		case model.ModeB:
			stats.PauseTimeB += c.PauseTime
		default:
			stats.PauseTimeA += c.PauseTime
		}
		return tx.saveStats(ctx, stats, c.At)
	})
}

func (r *Repository) location() *time.Location {
	if r.streak.Location == nil {
		return time.UTC
	}
	return r.streak.Location
}

// lockOrCreateStats: 통계 행을 없으면 만들고 잠근 뒤 읽는다.
func (r *Repository) lockOrCreateStats(ctx context.Context, guildID, userID string, now time.Time) (*UserStats, error) {
	db := r.db.WithContext(ctx)
	id := CompositeUserStatsID(guildID, userID)

	seed := UserStats{ID: id, GuildID: guildID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, dbErr("create_user_stats", err)
	}

	var stats UserStats
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&stats).Error; err != nil {
		return nil, dbErr("lock_user_stats", err)
	}
	return &stats, nil
}

func (r *Repository) saveStats(ctx context.Context, stats *UserStats, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&UserStats{}).
		Where("id = ?", stats.ID).
		Updates(map[string]any{
			"total_time":       stats.TotalTime,
			"total_work_a":     stats.TotalWorkA,
			"total_work_b":     stats.TotalWorkB,
			"pause_time_a":     stats.PauseTimeA,
			"pause_time_b":     stats.PauseTimeB,
			"sessions_count":   stats.SessionsCount,
			"streak_current":   stats.StreakCurrent,
			"streak_best":      stats.StreakBest,
			"longest_session":  stats.LongestSession,
			"first_session_at": stats.FirstSessionAt,
			"last_session_at":  stats.LastSessionAt,
			"updated_at":       now,
			"version":          gorm.Expr("version + 1"),
		}).Error
	return dbErr("update_user_stats", err)
}
