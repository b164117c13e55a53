package repository

import "time"

// ActiveSession: 진행 중인 세션 (길드/사용자당 최대 1행)
type ActiveSession struct {
	GuildID        string    `gorm:"column:guild_id;primaryKey"`
	UserID         string    `gorm:"column:user_id;primaryKey"`
	StartTimestamp int64     `gorm:"column:start_timestamp;not null"`
	Mode           string    `gorm:"column:mode;not null"`
	CreditedCycles int64     `gorm:"column:credited_cycles;not null;default:0"`
	Flagged        bool      `gorm:"column:flagged;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (ActiveSession) TableName() string { return "active_sessions" }

// UserStats: 사용자 누적 통계 (ID = guild:user)
type UserStats struct {
	ID             string     `gorm:"column:id;primaryKey"`
	GuildID        string     `gorm:"column:guild_id;not null;index"`
	UserID         string     `gorm:"column:user_id;not null;index"`
	TotalTime      int64      `gorm:"column:total_time;not null;default:0"`
	TotalWorkA     int64      `gorm:"column:total_work_a;not null;default:0"`
	TotalWorkB     int64      `gorm:"column:total_work_b;not null;default:0"`
	PauseTimeA     int64      `gorm:"column:pause_time_a;not null;default:0"`
	PauseTimeB     int64      `gorm:"column:pause_time_b;not null;default:0"`
	SessionsCount  int64      `gorm:"column:sessions_count;not null;default:0"`
	StreakCurrent  int64      `gorm:"column:streak_current;not null;default:0"`
	StreakBest     int64      `gorm:"column:streak_best;not null;default:0"`
	LongestSession int64      `gorm:"column:longest_session;not null;default:0"`
	FirstSessionAt *time.Time `gorm:"column:first_session_at"`
	LastSessionAt  *time.Time `gorm:"column:last_session_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null"`
	Version        int64      `gorm:"column:version;not null;default:0"`
}

func (UserStats) TableName() string { return "user_stats" }

// SessionRecord: 완료된 주기 또는 세션 종료 시의 부분 주기 기록 (추가 전용)
// 복합 인덱스: idx_session_records_lookup (guild_id, user_id, start_timestamp)
type SessionRecord struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GuildID        string    `gorm:"column:guild_id;not null;index:idx_session_records_lookup,priority:1"`
	UserID         string    `gorm:"column:user_id;not null;index:idx_session_records_lookup,priority:2"`
	Mode           string    `gorm:"column:mode;not null"`
	WorkTime       int64     `gorm:"column:work_time;not null"`
	PauseTime      int64     `gorm:"column:pause_time;not null"`
	StartTimestamp int64     `gorm:"column:start_timestamp;not null;index:idx_session_records_lookup,priority:3"`
	EndTimestamp   int64     `gorm:"column:end_timestamp;not null"`
	DayOfWeek      int       `gorm:"column:day_of_week;not null"`
	HourOfDay      int       `gorm:"column:hour_of_day;not null"`
	IsSessionEnd   bool      `gorm:"column:is_session_end;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
}

func (SessionRecord) TableName() string { return "session_records" }

// GuildSetting: 길드별 설정
type GuildSetting struct {
	GuildID         string    `gorm:"column:guild_id;primaryKey"`
	PomodoroChannel string    `gorm:"column:pomodoro_channel;not null;default:''"`
	RoleA           string    `gorm:"column:role_a;not null;default:''"`
	RoleB           string    `gorm:"column:role_b;not null;default:''"`
	Maintenance     bool      `gorm:"column:maintenance;not null;default:false"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

func (GuildSetting) TableName() string { return "guild_settings" }

// UserProfile: 랭킹 출력용 사용자 표시 이름
type UserProfile struct {
	GuildID     string    `gorm:"column:guild_id;primaryKey"`
	UserID      string    `gorm:"column:user_id;primaryKey"`
	DisplayName string    `gorm:"column:display_name;not null;default:''"`
	JoinDate    time.Time `gorm:"column:join_date;not null"`
	LastSeenAt  time.Time `gorm:"column:last_seen_at;not null"`
}

func (UserProfile) TableName() string { return "user_profiles" }
