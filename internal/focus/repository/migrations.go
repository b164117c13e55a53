package repository

import (
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/migrate"
)

// Migrations: 스키마 버전 목록. 적용된 버전은 수정하지 않고 새 버전을 추가한다.
func Migrations() []migrate.Migration {
	return []migrate.Migration{
		{
			Version:     1,
			Description: "active sessions, user stats, session records",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&ActiveSession{}, &UserStats{}, &SessionRecord{})
			},
		},
		{
			Version:     2,
			Description: "typed guild settings",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&GuildSetting{})
			},
		},
		{
			Version:     3,
			Description: "user profiles for leaderboard names",
			Up: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&UserProfile{})
			},
		},
	}
}
