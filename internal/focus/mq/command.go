package mq

// CommandKind: 채팅 명령 종류
type CommandKind int

// CommandKind 값.
const (
	CommandHelp CommandKind = iota
	CommandJoin
	CommandLeave
	CommandStatus
	CommandUserStats
	CommandLeaderboard
	CommandUnknown

	// 관리자 명령어

	// CommandMaintenance 는 점검 모드 켜기/끄기 명령이다.
	CommandMaintenance
	CommandConfig
	CommandReset
)

// ConfigField: 설정 명령 대상
type ConfigField string

// ConfigField 값.
const (
	ConfigFieldChannel ConfigField = "channel"
	ConfigFieldRoleA   ConfigField = "role_a"
	ConfigFieldRoleB   ConfigField = "role_b"
)

// Command: 파싱된 채팅 명령
type Command struct {
	Kind CommandKind
	// 참가 모드 원문 (검증은 서비스에서)
	Mode   string
	Metric string
	// 점검 모드 켜기 여부
	Enable bool
	Field  ConfigField
	Value  string
	// Usage: 인자가 잘못됐을 때 보여줄 사용법 키
	Usage string
}

// RequiresAdmin: 관리자 전용 명령인지 확인한다.
func (c Command) RequiresAdmin() bool {
	switch c.Kind {
	case CommandMaintenance, CommandConfig, CommandReset:
		return true
	default:
		return false
	}
}
