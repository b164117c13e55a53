package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/clause"
)

// TouchProfile: 표시 이름과 마지막 활동 시각을 갱신한다. 이름이 비어 있으면 기존 이름을 유지한다.
func (r *Repository) TouchProfile(ctx context.Context, guildID, userID, displayName string, now time.Time) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}
	displayName = strings.TrimSpace(displayName)
	updates := map[string]any{"last_seen_at": now}
	if displayName != "" {
		updates["display_name"] = displayName
	}
	row := UserProfile{
		GuildID:     guildID,
		UserID:      userID,
		DisplayName: displayName,
		JoinDate:    now,
		LastSeenAt:  now,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&row).Error
	return dbErr("touch_profile", err)
}

// DisplayName: 표시 이름이 없으면 빈 문자열.
func (r *Repository) DisplayName(ctx context.Context, guildID, userID string) (string, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return "", err
	}
	var names []string
	if err := db.Model(&UserProfile{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Limit(1).
		Pluck("display_name", &names).Error; err != nil {
		return "", dbErr("find_profile", err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}
