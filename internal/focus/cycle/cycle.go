// Package cycle 은 세션 시작 시각과 모드로 현재 집중/휴식 구간을 계산한다.
// 상태를 저장하지 않고 매번 시작 시각에서 다시 유도한다.
package cycle

import (
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// Durations: 한 주기의 집중/휴식 길이 (초)
type Durations struct {
	Work  int64
	Break int64
}

// Length: 주기 전체 길이
func (d Durations) Length() int64 { return d.Work + d.Break }

// Table: 모드별 주기 설정
type Table map[model.Mode]Durations

// DefaultTable: A = 50분/10분, B = 25분/5분
func DefaultTable() Table {
	return Table{
		model.ModeA: {Work: 3000, Break: 600},
		model.ModeB: {Work: 1500, Break: 300},
	}
}

// Lookup: 모드의 주기 설정. 없거나 길이가 0 이하면 UnknownModeError.
func (t Table) Lookup(mode model.Mode) (Durations, error) {
	d, ok := t[mode]
	if !ok || d.Work <= 0 || d.Break < 0 {
		return Durations{}, &ferrors.UnknownModeError{Mode: string(mode)}
	}
	return d, nil
}

// State: 특정 시각의 주기 상태
type State struct {
	Phase           model.Phase
	Remaining       int64 // 현재 구간 종료까지 남은 초
	CompletedCycles int64
	Elapsed         int64
	Position        int64 // 현재 주기 안에서의 위치
}

// Compute: start 부터 now 까지의 주기 상태를 계산한다.
func Compute(table Table, start int64, mode model.Mode, now int64) (State, error) {
	d, err := table.Lookup(mode)
	if err != nil {
		return State{}, err
	}
	elapsed := now - start
	if elapsed < 0 {
		return State{}, &ferrors.InvalidIntervalError{Start: start, Now: now}
	}

	length := d.Length()
	position := elapsed % length
	state := State{
		CompletedCycles: elapsed / length,
		Elapsed:         elapsed,
		Position:        position,
	}
	if position < d.Work {
		state.Phase = model.PhaseWork
		state.Remaining = d.Work - position
	} else {
		state.Phase = model.PhaseBreak
		state.Remaining = length - position
	}
	return state, nil
}

// Split: 경과 시간을 (완료 주기 수, 나머지의 집중 부분, 나머지의 휴식 부분)으로 나눈다.
// cycles*Length + work + pause == elapsed 가 항상 성립한다.
func Split(d Durations, elapsed int64) (cycles, work, pause int64) {
	if elapsed <= 0 || d.Length() <= 0 {
		return 0, 0, 0
	}
	cycles = elapsed / d.Length()
	rest := elapsed % d.Length()
	work = min(rest, d.Work)
	return cycles, work, rest - work
}
