// Package model 은 집중 세션 도메인 타입을 정의한다.
package model

import (
	"strings"

	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
)

// Mode: 세션 주기 모드. 모드마다 집중/휴식 길이가 다르다.
type Mode string

// Mode 값.
const (
	ModeA Mode = "A"
	ModeB Mode = "B"
)

// Modes: 지원하는 모든 모드
var Modes = []Mode{ModeA, ModeB}

// ParseMode: 대소문자 무시로 모드를 해석한다.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModeA:
		return ModeA, nil
	case ModeB:
		return ModeB, nil
	default:
		return "", &ferrors.UnknownModeError{Mode: raw}
	}
}

// Phase: 주기 안의 현재 구간
type Phase string

// Phase 값.
const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)
