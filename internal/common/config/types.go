package config

import "time"

// ServerConfig: HTTP 서버 바인딩 설정입니다.
type ServerConfig struct {
	Host string
	Port int
}

// ServerTuningConfig: HTTP 서버 타임아웃/헤더 제한 설정입니다.
type ServerTuningConfig struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// CommandsConfig: 채팅 명령어 설정입니다.
type CommandsConfig struct {
	Prefix string // 명령어 접두사 (ex: "/집중")
}

// RedisConfig: Valkey 캐시 연결 설정입니다.
type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	SocketPath string // 비어있으면 TCP 사용

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ValkeyMQConfig: Valkey Streams 메시지 큐 설정입니다.
type ValkeyMQConfig struct {
	Host     string
	Port     int
	Password string

	DialTimeout                 time.Duration
	ConsumerGroup               string
	ConsumerName                string
	ResetConsumerGroupOnStartup bool
	StreamKey                   string // 인바운드 스트림
	ReplyStreamKey              string // 아웃바운드 스트림

	BatchSize    int64
	BlockTimeout time.Duration
	Concurrency  int
	StreamMaxLen int64
}

// AccessConfig: 채팅방/사용자 접근 제어 설정입니다.
type AccessConfig struct {
	Enabled        bool
	AllowedChatIDs []string
	BlockedChatIDs []string
	BlockedUserIDs []string
	Passthrough    bool // true면 검사를 건너뜀
}

// LogConfig: 파일 로그 로테이션 설정입니다. Dir 이 비어있으면 파일 로그를 끕니다.
type LogConfig struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DatabaseConfig: 영속 저장소 설정입니다.
type DatabaseConfig struct {
	Driver string // sqlite | postgres
	Path   string // sqlite 파일 경로

	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxOpenConns int
	OpenRetries  int
}

// TelemetryConfig: OpenTelemetry 트레이싱 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}
