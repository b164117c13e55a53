// Package config 는 집중 봇 환경 설정을 읽는다.
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // 최소 컨테이너에서도 FOCUS_TIMEZONE 로드

	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// ServerConfig: HTTP 서버 설정 alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// CommandsConfig: 명령어 접두사 alias
type CommandsConfig = commonconfig.CommandsConfig

// RedisConfig: 상태 저장용 Valkey 설정 alias
type RedisConfig = commonconfig.RedisConfig

// ValkeyMQConfig: 메시지 큐 설정 alias
type ValkeyMQConfig = commonconfig.ValkeyMQConfig

// DatabaseConfig: 영속 저장소 설정 alias
type DatabaseConfig = commonconfig.DatabaseConfig

// AccessConfig: 접근 제어 설정 alias
type AccessConfig = commonconfig.AccessConfig

// LogConfig: 로깅 설정 alias
type LogConfig = commonconfig.LogConfig

// AdminConfig: 관리자 설정
type AdminConfig struct {
	UserIDs []string
	APIKey  string // 관리 HTTP API 키 (비어 있으면 인증 없음)
}

// IsAdmin: 관리자 여부
func (c AdminConfig) IsAdmin(userID string) bool {
	for _, id := range c.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// FocusConfig: 주기, 스캐너, 알림 설정
type FocusConfig struct {
	ModeAWork  int64
	ModeABreak int64
	ModeBWork  int64
	ModeBBreak int64

	Timezone  string
	ResetHour int

	ScanInterval       time.Duration
	ScanConcurrency    int
	ScanSessionTimeout time.Duration
	ScanLeaseTTL       time.Duration
	CommitTimeout      time.Duration

	NotifyRate    float64 // 초당 알림 수
	NotifyBurst   int
	NotifyTimeout time.Duration

	DedupTTL        time.Duration
	DedupMaxEntries int
	GuildCacheTTL   time.Duration
}

// CycleTable: 모드별 주기 표
func (c FocusConfig) CycleTable() cycle.Table {
	return cycle.Table{
		model.ModeA: {Work: c.ModeAWork, Break: c.ModeABreak},
		model.ModeB: {Work: c.ModeBWork, Break: c.ModeBBreak},
	}
}

// Location: 연속 기록 시간대
func (c FocusConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q failed: %w", c.Timezone, err)
	}
	return loc, nil
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Commands     CommandsConfig
	Redis        RedisConfig
	Valkey       ValkeyMQConfig
	Database     DatabaseConfig
	Access       AccessConfig
	Admin        AdminConfig
	Log          LogConfig
	Focus        FocusConfig
	Telemetry    commonconfig.TelemetryConfig
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := commonconfig.ReadServerConfigFromEnv(DefaultServerPort)
	if err != nil {
		return nil, err
	}
	serverTuning, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return nil, err
	}
	redisCfg, err := commonconfig.ReadRedisConfigFromEnv("localhost", 6379)
	if err != nil {
		return nil, err
	}
	valkey, err := commonconfig.ReadValkeyMQConfigFromEnv("FOCUS_", defaultMQConfig())
	if err != nil {
		return nil, err
	}
	database, err := commonconfig.ReadDatabaseConfigFromEnv(DefaultDBPath)
	if err != nil {
		return nil, err
	}
	access, err := commonconfig.ReadAccessConfigFromEnv("FOCUS_", false)
	if err != nil {
		return nil, err
	}
	log, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return nil, err
	}
	focus, err := readFocusConfig()
	if err != nil {
		return nil, err
	}
	telemetry, err := commonconfig.ReadTelemetryConfigFromEnv(BotName)
	if err != nil {
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		Commands:     CommandsConfig{Prefix: commonconfig.StringFromEnv("FOCUS_COMMAND_PREFIX", DefaultCommandPrefix)},
		Redis:        redisCfg,
		Valkey:       valkey,
		Database:     database,
		Access:       access,
		Admin: AdminConfig{
			UserIDs: commonconfig.StringListFromEnv("FOCUS_ADMIN_USER_IDS", nil),
			APIKey:  commonconfig.StringFromEnv("FOCUS_ADMIN_API_KEY", ""),
		},
		Log:       log,
		Focus:     focus,
		Telemetry: telemetry,
	}, nil
}

func defaultMQConfig() ValkeyMQConfig {
	return ValkeyMQConfig{
		Host:           "localhost",
		Port:           6379,
		DialTimeout:    5 * time.Second,
		ConsumerGroup:  DefaultConsumerGroup,
		ConsumerName:   consumerName(),
		StreamKey:      commonconfig.DefaultInboundStreamKey,
		ReplyStreamKey: commonconfig.DefaultOutboundStreamKey,
		BatchSize:      commonconfig.MQBatchSize,
		BlockTimeout:   commonconfig.MQReadTimeoutMS * time.Millisecond,
		Concurrency:    commonconfig.MQConsumerConcurrency,
		StreamMaxLen:   commonconfig.MQStreamMaxLen,
	}
}

// consumerName: 호스트 이름이 있으면 replica 마다 다른 소비자 이름을 쓴다.
func consumerName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return "focus-" + host
	}
	return DefaultConsumerName
}

func readFocusConfig() (FocusConfig, error) {
	var cfg FocusConfig
	var err error

	seconds := []struct {
		key    string
		def    int64
		target *int64
	}{
		{"FOCUS_MODE_A_WORK_SECONDS", DefaultModeAWorkSeconds, &cfg.ModeAWork},
		{"FOCUS_MODE_A_BREAK_SECONDS", DefaultModeABreakSeconds, &cfg.ModeABreak},
		{"FOCUS_MODE_B_WORK_SECONDS", DefaultModeBWorkSeconds, &cfg.ModeBWork},
		{"FOCUS_MODE_B_BREAK_SECONDS", DefaultModeBBreakSeconds, &cfg.ModeBBreak},
	}
	for _, s := range seconds {
		if *s.target, err = commonconfig.Int64FromEnv(s.key, s.def); err != nil {
			return FocusConfig{}, fmt.Errorf("read %s failed: %w", s.key, err)
		}
	}

	cfg.Timezone = commonconfig.StringFromEnv("FOCUS_TIMEZONE", DefaultTimezone)
	if cfg.ResetHour, err = commonconfig.IntFromEnv("FOCUS_RESET_HOUR", DefaultResetHour); err != nil {
		return FocusConfig{}, fmt.Errorf("read FOCUS_RESET_HOUR failed: %w", err)
	}

	durations := []struct {
		key    string
		def    time.Duration
		target *time.Duration
	}{
		{"FOCUS_SCAN_INTERVAL_SECONDS", DefaultScanInterval, &cfg.ScanInterval},
		{"FOCUS_SCAN_SESSION_TIMEOUT_SECONDS", DefaultScanSessionTimeout, &cfg.ScanSessionTimeout},
		{"FOCUS_COMMIT_TIMEOUT_SECONDS", DefaultCommitTimeout, &cfg.CommitTimeout},
		{"FOCUS_NOTIFY_TIMEOUT_SECONDS", DefaultNotifyTimeout, &cfg.NotifyTimeout},
		{"FOCUS_DEDUP_TTL_SECONDS", DefaultDedupTTL, &cfg.DedupTTL},
		{"FOCUS_GUILD_CACHE_TTL_SECONDS", DefaultGuildCacheTTL, &cfg.GuildCacheTTL},
	}
	for _, d := range durations {
		if *d.target, err = commonconfig.DurationSecondsFromEnv(d.key, int64(d.def/time.Second)); err != nil {
			return FocusConfig{}, fmt.Errorf("read %s failed: %w", d.key, err)
		}
	}
	// 임대는 스캔 주기보다 길어야 소유자가 연장할 수 있다.
	if cfg.ScanLeaseTTL, err = commonconfig.DurationSecondsFromEnv("FOCUS_SCAN_LEASE_TTL_SECONDS", int64(cfg.ScanInterval/time.Second)*3/2); err != nil {
		return FocusConfig{}, fmt.Errorf("read FOCUS_SCAN_LEASE_TTL_SECONDS failed: %w", err)
	}

	if cfg.ScanConcurrency, err = commonconfig.IntFromEnv("FOCUS_SCAN_CONCURRENCY", DefaultScanConcurrency); err != nil {
		return FocusConfig{}, fmt.Errorf("read FOCUS_SCAN_CONCURRENCY failed: %w", err)
	}
	if cfg.NotifyRate, err = commonconfig.Float64FromEnv("FOCUS_NOTIFY_RATE_PER_SECOND", DefaultNotifyRate); err != nil {
		return FocusConfig{}, fmt.Errorf("read FOCUS_NOTIFY_RATE_PER_SECOND failed: %w", err)
	}
	if cfg.NotifyBurst, err = commonconfig.IntFromEnv("FOCUS_NOTIFY_BURST", DefaultNotifyBurst); err != nil {
		return FocusConfig{}, fmt.Errorf("read FOCUS_NOTIFY_BURST failed: %w", err)
	}
	if cfg.DedupMaxEntries, err = commonconfig.IntFromEnv("FOCUS_DEDUP_MAX_ENTRIES", DefaultDedupMaxEntries); err != nil {
		return FocusConfig{}, fmt.Errorf("read FOCUS_DEDUP_MAX_ENTRIES failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return FocusConfig{}, err
	}
	return cfg, nil
}

// Validate: 주기 길이, 리셋 시각, 시간대를 검사한다.
func (c FocusConfig) Validate() error {
	if c.ModeAWork <= 0 || c.ModeBWork <= 0 {
		return fmt.Errorf("work seconds must be positive (A=%d, B=%d)", c.ModeAWork, c.ModeBWork)
	}
	if c.ModeABreak < 0 || c.ModeBBreak < 0 {
		return fmt.Errorf("break seconds must not be negative (A=%d, B=%d)", c.ModeABreak, c.ModeBBreak)
	}
	if c.ResetHour < 0 || c.ResetHour > 23 {
		return fmt.Errorf("invalid FOCUS_RESET_HOUR: %d", c.ResetHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("FOCUS_SCAN_INTERVAL_SECONDS must be positive")
	}
	return nil
}
