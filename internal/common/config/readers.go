package config

import (
	"fmt"
	"strings"
	"time"
)

// ReadServerConfigFromEnv: SERVER_HOST / SERVER_PORT 를 읽어옵니다.
func ReadServerConfigFromEnv(defaultPort int) (ServerConfig, error) {
	port, err := IntFromEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read SERVER_PORT failed: %w", err)
	}
	return ServerConfig{
		Host: StringFromEnv("SERVER_HOST", "0.0.0.0"),
		Port: port,
	}, nil
}

// ReadServerTuningConfigFromEnv: HTTP 서버 튜닝 값을 읽어옵니다. 0 은 비활성화를 뜻합니다.
func ReadServerTuningConfigFromEnv() (ServerTuningConfig, error) {
	readHeaderTimeout, err := DurationSecondsFromEnv("SERVER_READ_HEADER_TIMEOUT_SECONDS", 5)
	if err != nil {
		return ServerTuningConfig{}, err
	}
	idleTimeout, err := DurationSecondsFromEnv("SERVER_IDLE_TIMEOUT_SECONDS", 90)
	if err != nil {
		return ServerTuningConfig{}, err
	}
	maxHeaderBytes, err := IntFromEnv("SERVER_MAX_HEADER_BYTES", 1<<20)
	if err != nil {
		return ServerTuningConfig{}, err
	}
	if maxHeaderBytes < 0 {
		return ServerTuningConfig{}, fmt.Errorf("invalid SERVER_MAX_HEADER_BYTES: %d", maxHeaderBytes)
	}
	return ServerTuningConfig{
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}, nil
}

// ReadRedisConfigFromEnv: 캐시 Valkey 연결 설정을 읽어옵니다.
// REDIS_SOCKET_PATH 가 설정되면 TCP 설정보다 우선합니다.
func ReadRedisConfigFromEnv(defaultHost string, defaultPort int) (RedisConfig, error) {
	port, err := IntFromEnvFirstNonEmpty([]string{"REDIS_PORT", "CACHE_PORT"}, defaultPort)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis port failed: %w", err)
	}
	db, err := IntFromEnv("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_DB failed: %w", err)
	}

	return RedisConfig{
		Host:         StringFromEnvFirstNonEmpty([]string{"REDIS_HOST", "CACHE_HOST"}, defaultHost),
		Port:         port,
		Password:     StringFromEnvFirstNonEmpty([]string{"REDIS_PASSWORD", "CACHE_PASSWORD"}, ""),
		DB:           db,
		SocketPath:   StringFromEnvFirstNonEmpty([]string{"REDIS_SOCKET_PATH", "CACHE_SOCKET_PATH"}, ""),
		DialTimeout:  10 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, nil
}

// ReadLogConfigFromEnv: 파일 로그 설정을 읽어옵니다.
func ReadLogConfigFromEnv() (LogConfig, error) {
	dir := StringFromEnv("LOG_DIR", "")
	if strings.TrimSpace(dir) == "" {
		return LogConfig{}, nil
	}

	positive := func(key string, def int) (int, error) {
		v, err := IntFromEnv(key, def)
		if err != nil {
			return 0, err
		}
		if v <= 0 {
			return 0, fmt.Errorf("invalid %s: %d", key, v)
		}
		return v, nil
	}

	maxSizeMB, err := positive("LOG_FILE_MAX_SIZE_MB", 1)
	if err != nil {
		return LogConfig{}, err
	}
	maxBackups, err := positive("LOG_FILE_MAX_BACKUPS", 30)
	if err != nil {
		return LogConfig{}, err
	}
	maxAgeDays, err := positive("LOG_FILE_MAX_AGE_DAYS", 7)
	if err != nil {
		return LogConfig{}, err
	}
	compress, err := BoolFromEnv("LOG_FILE_COMPRESS", true)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Dir:        dir,
		MaxSizeMB:  maxSizeMB,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAgeDays,
		Compress:   compress,
	}, nil
}

// ReadValkeyMQConfigFromEnv: 메시지 큐 설정을 읽어옵니다.
// prefix 가 붙은 키를 먼저 보고, 없으면 공통 키(MQ_*), 그다음 defaults 값을 사용합니다.
func ReadValkeyMQConfigFromEnv(prefix string, defaults ValkeyMQConfig) (ValkeyMQConfig, error) {
	keys := func(name string) []string {
		return []string{prefix + name, name}
	}

	port, err := IntFromEnvFirstNonEmpty(keys("MQ_PORT"), defaults.Port)
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq port failed: %w", err)
	}
	dialMillis, err := Int64FromEnvFirstNonEmpty(keys("MQ_TIMEOUT_MS"), defaults.DialTimeout.Milliseconds())
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq timeout failed: %w", err)
	}
	batchSize, err := Int64FromEnvFirstNonEmpty(keys("MQ_BATCH_SIZE"), defaults.BatchSize)
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq batch size failed: %w", err)
	}
	blockMillis, err := Int64FromEnvFirstNonEmpty(keys("MQ_BLOCK_TIMEOUT_MS"), defaults.BlockTimeout.Milliseconds())
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq block timeout failed: %w", err)
	}
	concurrency, err := IntFromEnvFirstNonEmpty(keys("MQ_CONCURRENCY"), defaults.Concurrency)
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq concurrency failed: %w", err)
	}
	maxLen, err := Int64FromEnvFirstNonEmpty(keys("MQ_STREAM_MAX_LEN"), defaults.StreamMaxLen)
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq stream max len failed: %w", err)
	}
	resetGroup, err := BoolFromEnvFirstNonEmpty(keys("MQ_RESET_GROUP_ON_STARTUP"), defaults.ResetConsumerGroupOnStartup)
	if err != nil {
		return ValkeyMQConfig{}, fmt.Errorf("read mq reset group failed: %w", err)
	}

	// 0 이하 튜닝 값은 기본값으로 되돌림
	if batchSize <= 0 {
		batchSize = defaults.BatchSize
	}
	if blockMillis <= 0 {
		blockMillis = defaults.BlockTimeout.Milliseconds()
	}
	if concurrency <= 0 {
		concurrency = defaults.Concurrency
	}
	if maxLen <= 0 {
		maxLen = defaults.StreamMaxLen
	}

	return ValkeyMQConfig{
		Host:                        StringFromEnvFirstNonEmpty(keys("MQ_HOST"), defaults.Host),
		Port:                        port,
		Password:                    StringFromEnvFirstNonEmpty(keys("MQ_PASSWORD"), defaults.Password),
		DialTimeout:                 time.Duration(dialMillis) * time.Millisecond,
		ConsumerGroup:               StringFromEnvFirstNonEmpty(keys("MQ_CONSUMER_GROUP"), defaults.ConsumerGroup),
		ConsumerName:                StringFromEnvFirstNonEmpty(keys("MQ_CONSUMER_NAME"), defaults.ConsumerName),
		ResetConsumerGroupOnStartup: resetGroup,
		StreamKey:                   StringFromEnvFirstNonEmpty(keys("MQ_STREAM_KEY"), defaults.StreamKey),
		ReplyStreamKey:              StringFromEnvFirstNonEmpty(keys("MQ_REPLY_STREAM_KEY"), defaults.ReplyStreamKey),
		BatchSize:                   batchSize,
		BlockTimeout:                time.Duration(blockMillis) * time.Millisecond,
		Concurrency:                 concurrency,
		StreamMaxLen:                maxLen,
	}, nil
}

// ReadAccessConfigFromEnv: 접근 제어 설정을 읽어옵니다. prefix 키가 공통 키보다 우선합니다.
func ReadAccessConfigFromEnv(prefix string, defaultEnabled bool) (AccessConfig, error) {
	enabled, err := BoolFromEnvFirstNonEmpty([]string{prefix + "ACCESS_ENABLED", "ACCESS_ENABLED"}, defaultEnabled)
	if err != nil {
		return AccessConfig{}, fmt.Errorf("read ACCESS_ENABLED failed: %w", err)
	}
	passthrough, err := BoolFromEnvFirstNonEmpty([]string{prefix + "ACCESS_PASSTHROUGH", "ACCESS_PASSTHROUGH"}, false)
	if err != nil {
		return AccessConfig{}, fmt.Errorf("read ACCESS_PASSTHROUGH failed: %w", err)
	}

	return AccessConfig{
		Enabled:        enabled,
		AllowedChatIDs: StringListFromEnvFirstNonEmpty([]string{prefix + "ALLOWED_CHAT_IDS", "ALLOWED_CHAT_IDS"}, nil),
		BlockedChatIDs: StringListFromEnvFirstNonEmpty([]string{prefix + "BLOCKED_CHAT_IDS", "BLOCKED_CHAT_IDS"}, nil),
		BlockedUserIDs: StringListFromEnvFirstNonEmpty([]string{prefix + "BLOCKED_USER_IDS", "BLOCKED_USER_IDS"}, nil),
		Passthrough:    passthrough,
	}, nil
}

// ReadDatabaseConfigFromEnv: DB_DRIVER 에 따라 sqlite 또는 postgres 설정을 읽어옵니다.
func ReadDatabaseConfigFromEnv(defaultPath string) (DatabaseConfig, error) {
	driver := strings.ToLower(StringFromEnv("DB_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "postgres" {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: %s", driver)
	}

	port, err := IntFromEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_PORT failed: %w", err)
	}
	maxOpen, err := IntFromEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_MAX_OPEN_CONNS failed: %w", err)
	}
	retries, err := IntFromEnv("DB_OPEN_RETRIES", 5)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("read DB_OPEN_RETRIES failed: %w", err)
	}

	return DatabaseConfig{
		Driver:       driver,
		Path:         StringFromEnv("DB_PATH", defaultPath),
		Host:         StringFromEnv("DB_HOST", "localhost"),
		Port:         port,
		Name:         StringFromEnv("DB_NAME", "focus"),
		User:         StringFromEnv("DB_USER", "focus"),
		Password:     StringFromEnv("DB_PASSWORD", ""),
		SSLMode:      StringFromEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: maxOpen,
		OpenRetries:  retries,
	}, nil
}

// ReadTelemetryConfigFromEnv: OTEL_* 환경 변수에서 트레이싱 설정을 읽어옵니다.
func ReadTelemetryConfigFromEnv(defaultServiceName string) (TelemetryConfig, error) {
	enabled, err := BoolFromEnv("OTEL_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_ENABLED failed: %w", err)
	}
	insecure, err := BoolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_EXPORTER_OTLP_INSECURE failed: %w", err)
	}
	sampleRate, err := Float64FromEnv("OTEL_SAMPLE_RATE", 1.0)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_SAMPLE_RATE failed: %w", err)
	}
	if sampleRate < 0 || sampleRate > 1 {
		return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %v", sampleRate)
	}

	return TelemetryConfig{
		Enabled:        enabled,
		ServiceName:    StringFromEnv("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion: StringFromEnv("OTEL_SERVICE_VERSION", "dev"),
		Environment:    StringFromEnv("OTEL_ENVIRONMENT", "production"),
		OTLPEndpoint:   StringFromEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:   insecure,
		SampleRate:     sampleRate,
	}, nil
}
