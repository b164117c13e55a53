// Package errors 는 집중 세션 도메인 에러를 정의한다.
package errors

import (
	"fmt"

	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
)

// UnknownModeError: 주기 설정이 없는 모드
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode: %q", e.Mode)
}

// InvalidIntervalError: now 가 세션 시작보다 앞섬 (시계 역행 또는 데이터 손상)
type InvalidIntervalError struct {
	Start int64
	Now   int64
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval: start=%d now=%d", e.Start, e.Now)
}

// NegativeDurationError: 통계 반영 시 음수 시간
type NegativeDurationError struct {
	Field string
	Value int64
}

func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf("negative duration %s=%d", e.Field, e.Value)
}

// NotAdminError: 관리자 전용 명령
type NotAdminError struct {
	UserID string
}

func (e *NotAdminError) Error() string {
	return "not an admin: " + e.UserID
}

// InvalidMetricError: 알 수 없는 랭킹 지표
type InvalidMetricError struct {
	Metric string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("invalid leaderboard metric: %q", e.Metric)
}

// IsExpectedUserBehavior: 사용자 입력 실수로 분류되는 에러인지 확인한다.
func IsExpectedUserBehavior(err error) bool {
	return cerrors.IsExpectedUserBehavior(err,
		func() any { return new(*UnknownModeError) },
		func() any { return new(*NotAdminError) },
		func() any { return new(*InvalidMetricError) },
	)
}
