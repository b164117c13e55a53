// Package errors: 봇 전반에서 공유하는 인프라/접근 제어 에러 타입을 정의한다.
package errors

import (
	"errors"
	"fmt"
)

// RedisError: Valkey 작업 중 발생한 에러
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("redis error operation=%s", e.Operation)
	}
	return fmt.Sprintf("redis error operation=%s: %v", e.Operation, e.Err)
}

func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: 영속 저장소 작업 중 발생한 에러
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("db error operation=%s", e.Operation)
	}
	return fmt.Sprintf("db error operation=%s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// AccessDeniedError: 허용 목록에 없는 채팅방 접근
type AccessDeniedError struct {
	Reason string
}

func (e AccessDeniedError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return "access denied: " + e.Reason
}

// UserBlockedError: 차단된 사용자
type UserBlockedError struct {
	UserID string
}

func (e UserBlockedError) Error() string { return "user blocked: " + e.UserID }

// ChatBlockedError: 차단된 채팅방
type ChatBlockedError struct {
	ChatID string
}

func (e ChatBlockedError) Error() string { return "chat blocked: " + e.ChatID }

// MalformedInputError: 입력 형식 오류
type MalformedInputError struct {
	Message string
}

func (e MalformedInputError) Error() string { return e.Message }

var expectedUserBehaviorTypes = []func() any{
	func() any { return new(MalformedInputError) },
	func() any { return new(AccessDeniedError) },
}

// IsExpectedUserBehavior: 사용자의 예상된 실수로 볼 수 있는 에러인지 확인한다.
// extra 로 도메인 에러 타입 팩토리를 덧붙일 수 있다.
func IsExpectedUserBehavior(err error, extra ...func() any) bool {
	if err == nil {
		return false
	}
	for _, targets := range [][]func() any{expectedUserBehaviorTypes, extra} {
		for _, targetFn := range targets {
			if errors.As(err, targetFn()) {
				return true
			}
		}
	}
	return false
}
