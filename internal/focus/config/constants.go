package config

import "time"

// BotName: 로그/텔레메트리 서비스 이름
const BotName = "focus-bot"

// DefaultServerPort 는 관리 HTTP 기본 포트다.
const (
	DefaultServerPort    = 40260
	DefaultCommandPrefix = "/집중"
	DefaultDBPath        = "data/bot.db"
	DefaultConsumerGroup = "focus-bot-group"
	DefaultConsumerName  = "focus-consumer-1"
)

// DefaultModeAWorkSeconds 는 모드별 기본 주기 (초)다.
const (
	DefaultModeAWorkSeconds  = 3000
	DefaultModeABreakSeconds = 600
	DefaultModeBWorkSeconds  = 1500
	DefaultModeBBreakSeconds = 300
)

// DefaultTimezone 는 연속 기록 날짜 경계 기본값이다.
const (
	DefaultTimezone  = "Europe/Zurich"
	DefaultResetHour = 0
)

// DefaultScanInterval 는 스캐너/알림 기본값 목록이다.
const (
	DefaultScanInterval       = 60 * time.Second
	DefaultScanConcurrency    = 8
	DefaultScanSessionTimeout = 15 * time.Second
	DefaultCommitTimeout      = 10 * time.Second
	DefaultNotifyTimeout      = 5 * time.Second
	DefaultNotifyRate         = 5.0
	DefaultNotifyBurst        = 10
)

// DefaultDedupTTL 는 인바운드 중복 제거 기본값이다.
const (
	DefaultDedupTTL        = 30 * time.Second
	DefaultDedupMaxEntries = 4096
	DefaultGuildCacheTTL   = 30 * time.Second
)
