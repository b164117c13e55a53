package service

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/messages"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

var durationUnits = []struct {
	seconds  int64
	key      string
	fallback string
}{
	{31536000, messages.UnitYear, "년"},
	{2592000, messages.UnitMonth, "개월"},
	{86400, messages.UnitDay, "일"},
	{3600, messages.UnitHour, "시간"},
	{60, messages.UnitMinute, "분"},
}

// Formatter: 통계/랭킹/세션 요약을 메시지 템플릿으로 렌더링한다.
type Formatter struct {
	msg     *messageprovider.Provider
	printer *message.Printer
}

// NewFormatter: 새로운 Formatter 인스턴스를 생성한다.
func NewFormatter(msg *messageprovider.Provider) *Formatter {
	return &Formatter{msg: msg, printer: message.NewPrinter(language.Korean)}
}

// Messages: 메시지 제공자
func (f *Formatter) Messages() *messageprovider.Provider { return f.msg }

// Number: 천 단위 구분 기호가 붙은 정수
func (f *Formatter) Number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Duration: 초를 "1년 2개월 3일 4시간 5분 6초" 형태로 바꾼다. 0 인 단위는 생략하고
// 초는 0 이 아니거나 다른 단위가 하나도 없을 때만 붙인다.
func (f *Formatter) Duration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	parts := make([]string, 0, len(durationUnits)+1)
	for _, u := range durationUnits {
		if n := seconds / u.seconds; n > 0 {
			parts = append(parts, f.Number(n)+f.unit(u.key, u.fallback))
			seconds %= u.seconds
		}
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, f.Number(seconds)+f.unit(messages.UnitSecond, "초"))
	}
	return strings.Join(parts, " ")
}

func (f *Formatter) unit(key, fallback string) string {
	if f.msg.Has(key) {
		return f.msg.Get(key)
	}
	return fallback
}

// Phase: 구간 이름
func (f *Formatter) Phase(p model.Phase) string {
	if p == model.PhaseBreak {
		return f.msg.Get(messages.PhaseBreak)
	}
	return f.msg.Get(messages.PhaseWork)
}

// MetricName: 랭킹 지표 이름
func (f *Formatter) MetricName(m model.LeaderboardMetric) string {
	key := messages.LeaderboardMetricPrefix + string(m)
	if f.msg.Has(key) {
		return f.msg.Get(key)
	}
	return string(m)
}

// MetricValue: 시간 지표는 기간으로, 횟수 지표는 숫자로
func (f *Formatter) MetricValue(m model.LeaderboardMetric, v int64) string {
	switch m {
	case model.MetricSessionsCount:
		return f.Number(v) + "회"
	case model.MetricStreakBest:
		return f.Number(v) + "일"
	default:
		return f.Duration(v)
	}
}

// Summary: 세션 종료 요약
func (f *Formatter) Summary(name string, s model.SessionSummary) string {
	return f.msg.Get(messages.LeaveSummary,
		messageprovider.P("name", name),
		messageprovider.P("work", f.Duration(s.WorkTime)),
		messageprovider.P("pause", f.Duration(s.PauseTime)),
		messageprovider.P("total", f.Duration(s.TotalElapsed)),
		messageprovider.P("cycles", f.Number(s.Cycles)),
	)
}

// Status: 진행 중 세션 상태
func (f *Formatter) Status(name string, info model.ActiveSessionInfo) string {
	if info.StateErr != nil {
		return f.msg.Get(messages.StatusInvalid)
	}
	return f.msg.Get(messages.StatusActive,
		messageprovider.P("name", name),
		messageprovider.P("mode", string(info.Session.Mode)),
		messageprovider.P("phase", f.Phase(info.Phase)),
		messageprovider.P("remaining", f.Duration(info.Remaining)),
		messageprovider.P("cycles", f.Number(info.CompletedCycles)),
		messageprovider.P("elapsed", f.Duration(info.Elapsed)),
	)
}

// UserStats: 개인 통계. stats 가 nil 이면 기록 없음 메시지.
func (f *Formatter) UserStats(name string, stats *model.UserStats) string {
	if stats == nil {
		return f.msg.Get(messages.StatsNotFound, messageprovider.P("name", name))
	}
	lines := []string{
		f.msg.Get(messages.StatsHeader, messageprovider.P("name", name)),
		f.msg.Get(messages.StatsTotals,
			messageprovider.P("total", f.Duration(stats.TotalTime)),
			messageprovider.P("longest", f.Duration(stats.LongestSession)),
		),
		f.msg.Get(messages.StatsModes,
			messageprovider.P("workA", f.Duration(stats.TotalWorkA)),
			messageprovider.P("pauseA", f.Duration(stats.PauseTimeA)),
			messageprovider.P("workB", f.Duration(stats.TotalWorkB)),
			messageprovider.P("pauseB", f.Duration(stats.PauseTimeB)),
		),
		f.msg.Get(messages.StatsSessions, messageprovider.P("sessions", f.Number(stats.SessionsCount))),
		f.msg.Get(messages.StatsStreak,
			messageprovider.P("current", f.Number(stats.StreakCurrent)),
			messageprovider.P("best", f.Number(stats.StreakBest)),
		),
	}
	return strings.Join(lines, "\n")
}

// Leaderboard: 랭킹. 이름이 없으면 user_id 를 쓴다.
func (f *Formatter) Leaderboard(metric model.LeaderboardMetric, entries []model.LeaderboardEntry) string {
	metricName := f.MetricName(metric)
	if len(entries) == 0 {
		return f.msg.Get(messages.LeaderboardEmpty, messageprovider.P("metric", metricName))
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, f.msg.Get(messages.LeaderboardHeader, messageprovider.P("metric", metricName)))
	for _, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = e.UserID
		}
		lines = append(lines, f.msg.Get(messages.LeaderboardItem,
			messageprovider.P("rank", e.Rank),
			messageprovider.P("name", name),
			messageprovider.P("value", f.MetricValue(metric, e.Value)),
		))
	}
	return strings.Join(lines, "\n")
}

// Notification: 스캐너 알림 문구
func (f *Formatter) Notification(mention string, n model.Notification) string {
	key := messages.NotifyCycleStarted
	if n.Kind == model.NotifyBreakStarted {
		key = messages.NotifyBreakStarted
	}
	return f.msg.Get(key,
		messageprovider.P("mention", mention),
		messageprovider.P("cycles", f.Number(n.CompletedCycles)),
		messageprovider.P("remaining", f.Duration(n.Remaining)),
	)
}
