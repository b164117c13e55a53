package config

// 카카오톡 메시지 관련 상수.
const (
	// KakaoMessageMaxLength: 한 번에 보낼 메시지 최대 길이
	KakaoMessageMaxLength = 500
)

// MQ 기본값.
const (
	MQBatchSize           = 5
	MQReadTimeoutMS       = 5000
	MQConsumerConcurrency = 5
	MQStreamMaxLen        = 1000
)

// 스트림 키 상수.
const (
	// DefaultInboundStreamKey: 채팅 메시지 인바운드 스트림 키
	DefaultInboundStreamKey = "kakao:focus"
	// DefaultOutboundStreamKey: 봇 응답 스트림 키
	DefaultOutboundStreamKey = "kakao:bot:reply"
)
