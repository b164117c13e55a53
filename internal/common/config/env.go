package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupFirst: 키 목록 중 공백이 아닌 값을 가진 첫 번째 환경 변수를 찾습니다.
func lookupFirst(keys ...string) (key string, value string, ok bool) {
	for _, k := range keys {
		raw, found := os.LookupEnv(k)
		if !found {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		return k, raw, true
	}
	return "", "", false
}

func parseFirst[T any](keys []string, defaultValue T, kind string, parse func(string) (T, error)) (T, error) {
	key, raw, ok := lookupFirst(keys...)
	if !ok {
		return defaultValue, nil
	}
	value, err := parse(raw)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("invalid %s env %s=%q: %w", kind, key, raw, err)
	}
	return value, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized bool %q", raw)
	}
}

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func splitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// IntFromEnv: 환경 변수에서 정수 값을 읽어옵니다.
func IntFromEnv(key string, defaultValue int) (int, error) {
	return IntFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// Int64FromEnv: 환경 변수에서 64비트 정수 값을 읽어옵니다.
func Int64FromEnv(key string, defaultValue int64) (int64, error) {
	return Int64FromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// Float64FromEnv: 환경 변수에서 실수 값을 읽어옵니다.
func Float64FromEnv(key string, defaultValue float64) (float64, error) {
	return parseFirst([]string{key}, defaultValue, "float64", func(raw string) (float64, error) {
		return strconv.ParseFloat(raw, 64)
	})
}

// BoolFromEnv: 환경 변수에서 불리언 값을 읽어옵니다. (true/1/yes/y/on, false/0/no/n/off)
func BoolFromEnv(key string, defaultValue bool) (bool, error) {
	return BoolFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// DurationSecondsFromEnv: 초 단위 정수를 Duration으로 읽어옵니다. 음수는 거부합니다.
func DurationSecondsFromEnv(key string, defaultSeconds int64) (time.Duration, error) {
	return durationFromEnv(key, defaultSeconds, time.Second)
}

func durationFromEnv(key string, defaultValue int64, unit time.Duration) (time.Duration, error) {
	value, err := Int64FromEnv(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid duration env %s=%d", key, value)
	}
	return time.Duration(value) * unit, nil
}

// StringFromEnv: 환경 변수에서 문자열 값을 읽어옵니다.
func StringFromEnv(key string, defaultValue string) string {
	return StringFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringListFromEnv: 콤마/공백으로 구분된 문자열 목록을 읽어옵니다.
func StringListFromEnv(key string, defaultValue []string) []string {
	return StringListFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringFromEnvFirstNonEmpty: 여러 키 중 첫 번째로 값이 있는 문자열을 반환합니다.
func StringFromEnvFirstNonEmpty(keys []string, defaultValue string) string {
	if _, raw, ok := lookupFirst(keys...); ok {
		return raw
	}
	return defaultValue
}

// IntFromEnvFirstNonEmpty: 여러 키 중 첫 번째로 값이 있는 정수를 반환합니다.
func IntFromEnvFirstNonEmpty(keys []string, defaultValue int) (int, error) {
	return parseFirst(keys, defaultValue, "int", strconv.Atoi)
}

// Int64FromEnvFirstNonEmpty: 여러 키 중 첫 번째로 값이 있는 64비트 정수를 반환합니다.
func Int64FromEnvFirstNonEmpty(keys []string, defaultValue int64) (int64, error) {
	return parseFirst(keys, defaultValue, "int64", parseInt64)
}

// BoolFromEnvFirstNonEmpty: 여러 키 중 첫 번째로 값이 있는 불리언을 반환합니다.
func BoolFromEnvFirstNonEmpty(keys []string, defaultValue bool) (bool, error) {
	return parseFirst(keys, defaultValue, "bool", parseBool)
}

// StringListFromEnvFirstNonEmpty: 여러 키 중 첫 번째로 항목이 있는 문자열 목록을 반환합니다.
func StringListFromEnvFirstNonEmpty(keys []string, defaultValue []string) []string {
	for _, key := range keys {
		_, raw, ok := lookupFirst(key)
		if !ok {
			continue
		}
		if items := splitList(raw); len(items) > 0 {
			return items
		}
	}
	return defaultValue
}
