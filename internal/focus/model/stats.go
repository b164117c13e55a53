package model

import (
	"time"

	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
)

// UserStats: 사용자별 누적 통계 (초 단위)
type UserStats struct {
	GuildID        string
	UserID         string
	TotalTime      int64
	TotalWorkA     int64
	TotalWorkB     int64
	PauseTimeA     int64
	PauseTimeB     int64
	SessionsCount  int64
	StreakCurrent  int64
	StreakBest     int64
	LongestSession int64
	FirstSessionAt *time.Time
	LastSessionAt  *time.Time
}

// LeaderboardMetric: 랭킹 기준 컬럼
type LeaderboardMetric string

// LeaderboardMetric 값.
const (
	MetricTotalTime      LeaderboardMetric = "total_time"
	MetricSessionsCount  LeaderboardMetric = "sessions_count"
	MetricTotalWorkA     LeaderboardMetric = "total_work_a"
	MetricTotalWorkB     LeaderboardMetric = "total_work_b"
	MetricStreakBest     LeaderboardMetric = "streak_best"
	MetricLongestSession LeaderboardMetric = "longest_session"
)

var metricLimits = map[LeaderboardMetric]int{
	MetricTotalTime:      10,
	MetricSessionsCount:  10,
	MetricTotalWorkA:     10,
	MetricTotalWorkB:     10,
	MetricStreakBest:     5,
	MetricLongestSession: 5,
}

var metricAliases = map[string]LeaderboardMetric{
	"시간":   MetricTotalTime,
	"횟수":   MetricSessionsCount,
	"a":    MetricTotalWorkA,
	"b":    MetricTotalWorkB,
	"연속":   MetricStreakBest,
	"최장":   MetricLongestSession,
	"time": MetricTotalTime,
}

// ParseLeaderboardMetric: 빈 값은 total_time. 컬럼 이름과 한글 별칭을 받는다.
func ParseLeaderboardMetric(raw string) (LeaderboardMetric, error) {
	if raw == "" {
		return MetricTotalTime, nil
	}
	m := LeaderboardMetric(raw)
	if _, ok := metricLimits[m]; ok {
		return m, nil
	}
	if alias, ok := metricAliases[raw]; ok {
		return alias, nil
	}
	return "", &ferrors.InvalidMetricError{Metric: raw}
}

// Limit: 랭킹에 보여줄 인원 수
func (m LeaderboardMetric) Limit() int {
	return metricLimits[m]
}

// Valid: 알려진 지표인지 여부
func (m LeaderboardMetric) Valid() bool {
	_, ok := metricLimits[m]
	return ok
}

// LeaderboardEntry: 랭킹 한 줄
type LeaderboardEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	Value       int64
}
