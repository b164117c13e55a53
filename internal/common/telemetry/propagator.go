package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectContext: ctx 의 trace context 를 carrier 에 기록한다.
func InjectContext(ctx context.Context, carrier propagation.TextMapCarrier) {
	otel.GetTextMapPropagator().Inject(ctx, carrier)
}

// ExtractContext: carrier 에서 부모 trace context 를 복원한다.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// MapCarrier: 스트림 메시지 필드 맵을 TextMapCarrier 로 쓰기 위한 어댑터
type MapCarrier map[string]string

// Get 은 키의 값을 반환한다.
func (c MapCarrier) Get(key string) string { return c[key] }

// Set 은 키에 값을 기록한다.
func (c MapCarrier) Set(key, value string) { c[key] = value }

// Keys 는 모든 키를 반환한다.
func (c MapCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
