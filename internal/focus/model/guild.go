package model

// GuildConfig: 길드별 설정
type GuildConfig struct {
	GuildID         string
	PomodoroChannel string
	RoleA           string
	RoleB           string
	Maintenance     bool
}

// RoleFor: 모드에 대응하는 역할
func (c GuildConfig) RoleFor(mode Mode) string {
	if mode == ModeB {
		return c.RoleB
	}
	return c.RoleA
}

// NotificationKind: 스캐너 알림 종류
type NotificationKind string

// NotificationKind 값.
const (
	NotifyCycleStarted NotificationKind = "cycle_started"
	NotifyBreakStarted NotificationKind = "break_started"
)

// Notification: 사용자에게 보낼 주기 전환 알림
type Notification struct {
	GuildID         string
	UserID          string
	Kind            NotificationKind
	Mode            Mode
	CompletedCycles int64
	Remaining       int64
}
