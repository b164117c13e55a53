package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// InsertActiveSession: 행이 없을 때만 생성한다. 이미 있으면 false.
func (r *Repository) InsertActiveSession(ctx context.Context, s model.ActiveSession, now time.Time) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	entity := ActiveSession{
		GuildID:        s.GuildID,
		UserID:         s.UserID,
		StartTimestamp: s.StartTimestamp,
		Mode:           string(s.Mode),
		CreatedAt:      now,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity)
	if res.Error != nil {
		return false, dbErr("insert_active_session", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FindActiveSession: 행이 없으면 nil.
func (r *Repository) FindActiveSession(ctx context.Context, guildID, userID string) (*model.ActiveSession, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return findActiveSession(db, guildID, userID)
}

// LockActiveSession: 트랜잭션 안에서 행 잠금과 함께 읽는다. SQLite 에서는 잠금 절이 무시된다.
func (r *Repository) LockActiveSession(ctx context.Context, guildID, userID string) (*model.ActiveSession, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	return findActiveSession(db.Clauses(clause.Locking{Strength: "UPDATE"}), guildID, userID)
}

func findActiveSession(db *gorm.DB, guildID, userID string) (*model.ActiveSession, error) {
	var row ActiveSession
	err := db.Where("guild_id = ? AND user_id = ?", guildID, userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr("find_active_session", err)
	}
	s := toModelSession(row)
	return &s, nil
}

// DeleteActiveSession: (guild, user, start) 가 일치하는 행을 지운다. 지웠으면 true.
// 같은 세션을 두 호출자가 동시에 끝낼 때 한쪽만 true 를 받는다.
func (r *Repository) DeleteActiveSession(ctx context.Context, guildID, userID string, start int64) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	res := db.Where("guild_id = ? AND user_id = ? AND start_timestamp = ?", guildID, userID, start).
		Delete(&ActiveSession{})
	if res.Error != nil {
		return false, dbErr("delete_active_session", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// AdvanceCreditedCycles: credited_cycles 가 from 일 때만 to 로 올린다 (CAS).
func (r *Repository) AdvanceCreditedCycles(ctx context.Context, guildID, userID string, start, from, to int64) (bool, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	res := db.Model(&ActiveSession{}).
		Where("guild_id = ? AND user_id = ? AND start_timestamp = ? AND credited_cycles = ? AND flagged = ?",
			guildID, userID, start, from, false).
		Update("credited_cycles", to)
	if res.Error != nil {
		return false, dbErr("advance_credited_cycles", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FlagActiveSession: 자동 정산 대상에서 제외한다.
func (r *Repository) FlagActiveSession(ctx context.Context, guildID, userID string, start int64) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	err = db.Model(&ActiveSession{}).
		Where("guild_id = ? AND user_id = ? AND start_timestamp = ?", guildID, userID, start).
		Update("flagged", true).Error
	return dbErr("flag_active_session", err)
}

// ListActiveSessions: 길드의 진행 중 세션 (시작 순)
func (r *Repository) ListActiveSessions(ctx context.Context, guildID string) ([]model.ActiveSession, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []ActiveSession
	if err := db.Where("guild_id = ?", guildID).
		Order("start_timestamp ASC").Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbErr("list_active_sessions", err)
	}
	return toModelSessions(rows), nil
}

// ListScannableSessions: 모든 길드의 플래그 없는 진행 중 세션
func (r *Repository) ListScannableSessions(ctx context.Context) ([]model.ActiveSession, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []ActiveSession
	if err := db.Where("flagged = ?", false).
		Order("guild_id ASC").Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbErr("list_scannable_sessions", err)
	}
	return toModelSessions(rows), nil
}

func toModelSession(row ActiveSession) model.ActiveSession {
	return model.ActiveSession{
		GuildID:        row.GuildID,
		UserID:         row.UserID,
		StartTimestamp: row.StartTimestamp,
		Mode:           model.Mode(row.Mode),
		CreditedCycles: row.CreditedCycles,
		Flagged:        row.Flagged,
	}
}

func toModelSessions(rows []ActiveSession) []model.ActiveSession {
	out := make([]model.ActiveSession, 0, len(rows))
	for _, row := range rows {
		out = append(out, toModelSession(row))
	}
	return out
}
