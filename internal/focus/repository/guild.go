package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// FindGuildConfig: 설정 행이 없으면 기본값 (점검 꺼짐).
func (r *Repository) FindGuildConfig(ctx context.Context, guildID string) (model.GuildConfig, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return model.GuildConfig{}, err
	}
	var row GuildSetting
	err = db.Where("guild_id = ?", guildID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.GuildConfig{GuildID: guildID}, nil
	}
	if err != nil {
		return model.GuildConfig{}, dbErr("find_guild_setting", err)
	}
	return row.toModel(), nil
}

// LockGuildConfig: 설정 행을 만들어 두고 공유 잠금으로 읽는다. 트랜잭션 안에서 호출한다.
// 점검 플래그 upsert 는 이 트랜잭션이 끝날 때까지 기다리고, 이 읽기는 커밋된 최신 플래그를 본다.
func (r *Repository) LockGuildConfig(ctx context.Context, guildID string, now time.Time) (model.GuildConfig, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return model.GuildConfig{}, err
	}
	seed := GuildSetting{GuildID: guildID, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return model.GuildConfig{}, dbErr("ensure_guild_setting", err)
	}

	var row GuildSetting
	err = db.Clauses(clause.Locking{Strength: "SHARE"}).Where("guild_id = ?", guildID).Take(&row).Error
	if err != nil {
		return model.GuildConfig{}, dbErr("lock_guild_setting", err)
	}
	return row.toModel(), nil
}

func (row GuildSetting) toModel() model.GuildConfig {
	return model.GuildConfig{
		GuildID:         row.GuildID,
		PomodoroChannel: row.PomodoroChannel,
		RoleA:           row.RoleA,
		RoleB:           row.RoleB,
		Maintenance:     row.Maintenance,
	}
}

// UpdateGuildConfig: 지정한 컬럼만 upsert 한다. 허용 컬럼: pomodoro_channel, role_a, role_b, maintenance.
func (r *Repository) UpdateGuildConfig(ctx context.Context, guildID string, fields map[string]any, now time.Time) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	row := GuildSetting{GuildID: guildID, UpdatedAt: now}
	updates := map[string]any{"updated_at": now}
	for col, v := range fields {
		switch col {
		case "pomodoro_channel":
			row.PomodoroChannel, _ = v.(string)
		case "role_a":
			row.RoleA, _ = v.(string)
		case "role_b":
			row.RoleB, _ = v.(string)
		case "maintenance":
			row.Maintenance, _ = v.(bool)
		default:
			continue
		}
		updates[col] = v
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&row).Error
	return dbErr("upsert_guild_setting", err)
}

// SetMaintenance: 점검 플래그만 바꾼다.
func (r *Repository) SetMaintenance(ctx context.Context, guildID string, enabled bool, now time.Time) error {
	return r.UpdateGuildConfig(ctx, guildID, map[string]any{"maintenance": enabled}, now)
}
