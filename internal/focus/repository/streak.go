package repository

import "time"

// StreakPolicy: 연속 기록의 날짜 경계. ResetHour 시각에 하루가 바뀐다.
type StreakPolicy struct {
	Location  *time.Location
	ResetHour int
}

// DefaultStreakPolicy: Europe/Zurich 자정 기준. tzdata 가 없으면 UTC.
func DefaultStreakPolicy() StreakPolicy {
	loc, err := time.LoadLocation("Europe/Zurich")
	if err != nil {
		loc = time.UTC
	}
	return StreakPolicy{Location: loc}
}

// Day: t 가 속한 연속 기록 날짜 (1970-01-01 부터의 일 수)
func (p StreakPolicy) Day(t time.Time) int64 {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc).Add(-time.Duration(p.ResetHour) * time.Hour)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Next: 세션 종료 시각 endedAt 기준 새 연속 기록
func (p StreakPolicy) Next(current int64, last *time.Time, endedAt time.Time) int64 {
	if last == nil || current <= 0 {
		return 1
	}
	switch p.Day(endedAt) - p.Day(*last) {
	case 0:
		return current
	case 1:
		return current + 1
	default:
		if p.Day(endedAt) < p.Day(*last) {
			return current
		}
		return 1
	}
}
