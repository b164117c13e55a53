// Package messages 는 집중 봇 응답 메시지 키를 정의한다.
package messages

// Help: 도움말
const (
	Help           = "help.message"
	UnknownCommand = "help.unknown_command"
)

// JoinCreated: 참가 관련 메시지 키
const (
	JoinCreated       = "join.created"
	JoinAlreadyActive = "join.already_active"
	JoinMaintenance   = "join.maintenance"
	JoinUsage         = "join.usage"
)

// LeaveSummary: 종료 관련 메시지 키
const (
	LeaveSummary   = "leave.summary"
	LeaveNotActive = "leave.not_active"
)

// StatusActive: 상태 조회 메시지 키
const (
	StatusActive    = "status.active"
	StatusNotActive = "status.not_active"
	StatusInvalid   = "status.invalid"
	PhaseWork       = "status.phase.work"
	PhaseBreak      = "status.phase.break"
)

// StatsHeader: 개인 통계 메시지 키
const (
	StatsHeader   = "stats.header"
	StatsTotals   = "stats.totals"
	StatsModes    = "stats.modes"
	StatsSessions = "stats.sessions"
	StatsStreak   = "stats.streak"
	StatsNotFound = "stats.not_found"
)

// LeaderboardHeader: 랭킹 메시지 키
const (
	LeaderboardHeader       = "leaderboard.header"
	LeaderboardItem         = "leaderboard.item"
	LeaderboardEmpty        = "leaderboard.empty"
	LeaderboardMetricPrefix = "leaderboard.metric."
)

// MaintenanceOn: 점검 모드 메시지 키
const (
	MaintenanceOn    = "maintenance.enabled"
	MaintenanceOff   = "maintenance.disabled"
	MaintenanceUsage = "maintenance.usage"
)

// ConfigChannel: 길드 설정 메시지 키
const (
	ConfigChannel = "config.channel"
	ConfigRole    = "config.role"
	ConfigUsage   = "config.usage"
	ResetDone     = "reset.done"
)

// NotifyCycleStarted: 스캐너 알림 메시지 키
const (
	NotifyCycleStarted = "notify.cycle_started"
	NotifyBreakStarted = "notify.break_started"
)

// ErrorGeneric: 에러 메시지 키
const (
	ErrorGeneric       = "error.generic"
	ErrorNotAdmin      = "error.not_admin"
	ErrorUnknownMode   = "error.unknown_mode"
	ErrorInvalidMetric = "error.invalid_metric"
	ErrorAccessDenied  = "error.access_denied"
	ErrorUserBlocked   = "error.user_blocked"
	ErrorChatBlocked   = "error.chat_blocked"
	ErrorMalformed     = "error.malformed_input"
)

// DurationUnits: 기간 단위 (큰 단위부터)
const (
	UnitYear   = "duration.year"
	UnitMonth  = "duration.month"
	UnitDay    = "duration.day"
	UnitHour   = "duration.hour"
	UnitMinute = "duration.minute"
	UnitSecond = "duration.second"
)
