package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// GetUserStats: 통계 행이 없으면 nil.
func (r *Repository) GetUserStats(ctx context.Context, guildID, userID string) (*model.UserStats, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var row UserStats
	err = db.Where("id = ?", CompositeUserStatsID(guildID, userID)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr("get_user_stats", err)
	}
	s := toModelStats(row)
	return &s, nil
}

type leaderboardRow struct {
	UserID      string
	DisplayName *string
	Value       int64
}

// TopUserStats: 지표 값이 0 보다 큰 사용자를 값 내림차순, 생성 순, user_id 순으로 limit 명까지 반환한다.
func (r *Repository) TopUserStats(ctx context.Context, guildID string, metric model.LeaderboardMetric, limit int) ([]model.LeaderboardEntry, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = metric.Limit()
	}

	// metric 은 Valid() 로 검증된 컬럼 이름만 들어온다.
	column := "s." + string(metric)
	var rows []leaderboardRow
	err = db.Table("user_stats AS s").
		Select("s.user_id AS user_id, p.display_name AS display_name, "+column+" AS value").
		Joins("LEFT JOIN user_profiles AS p ON p.guild_id = s.guild_id AND p.user_id = s.user_id").
		Where("s.guild_id = ? AND "+column+" > 0", guildID).
		Order(column + " DESC").
		Order("s.created_at ASC").
		Order("s.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, dbErr("top_user_stats", err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entry := model.LeaderboardEntry{Rank: i + 1, UserID: row.UserID, Value: row.Value}
		if row.DisplayName != nil {
			entry.DisplayName = *row.DisplayName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListSessionRecords: 사용자 기록 (시작 순)
func (r *Repository) ListSessionRecords(ctx context.Context, guildID, userID string) ([]SessionRecord, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []SessionRecord
	if err := db.Where("guild_id = ? AND user_id = ?", guildID, userID).
		Order("start_timestamp ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbErr("list_session_records", err)
	}
	return rows, nil
}

// ResetResult: 길드 초기화로 지운 행 수
type ResetResult struct {
	StatsDeleted   int64
	RecordsDeleted int64
}

// ResetGuild: 길드의 user_stats 와 session_records 를 지운다. 진행 중 세션은 건드리지 않는다.
func (r *Repository) ResetGuild(ctx context.Context, guildID string) (ResetResult, error) {
	var out ResetResult
	err := r.WithTx(ctx, func(tx *Repository) error {
		db := tx.db.WithContext(ctx)
		res := db.Where("guild_id = ?", guildID).Delete(&UserStats{})
		if res.Error != nil {
			return dbErr("reset_user_stats", res.Error)
		}
		out.StatsDeleted = res.RowsAffected

		res = db.Where("guild_id = ?", guildID).Delete(&SessionRecord{})
		if res.Error != nil {
			return dbErr("reset_session_records", res.Error)
		}
		out.RecordsDeleted = res.RowsAffected
		return nil
	})
	return out, err
}

func toModelStats(row UserStats) model.UserStats {
	return model.UserStats{
		GuildID:        row.GuildID,
		UserID:         row.UserID,
		TotalTime:      row.TotalTime,
		TotalWorkA:     row.TotalWorkA,
		TotalWorkB:     row.TotalWorkB,
		PauseTimeA:     row.PauseTimeA,
		PauseTimeB:     row.PauseTimeB,
		SessionsCount:  row.SessionsCount,
		StreakCurrent:  row.StreakCurrent,
		StreakBest:     row.StreakBest,
		LongestSession: row.LongestSession,
		FirstSessionAt: row.FirstSessionAt,
		LastSessionAt:  row.LastSessionAt,
	}
}
