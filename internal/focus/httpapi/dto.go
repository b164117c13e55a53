package httpapi

import (
	"time"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// ActiveSessionResponse: 진행 중 세션 응답 DTO
type ActiveSessionResponse struct {
	UserID          string `json:"userId"`
	Mode            string `json:"mode"`
	StartTimestamp  int64  `json:"startTimestamp"`
	CreditedCycles  int64  `json:"creditedCycles"`
	Flagged         bool   `json:"flagged"`
	Phase           string `json:"phase,omitempty"`
	Remaining       int64  `json:"remaining"`
	CompletedCycles int64  `json:"completedCycles"`
	Elapsed         int64  `json:"elapsed"`
	Error           string `json:"error,omitempty"`
}

// ActiveSessionsResponse: 길드 세션 목록 응답 DTO
type ActiveSessionsResponse struct {
	GuildID  string                  `json:"guildId"`
	Sessions []ActiveSessionResponse `json:"sessions"`
}

// LeaderboardItem: 랭킹 항목 DTO
type LeaderboardItem struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Value       int64  `json:"value"`
}

// LeaderboardResponse: 랭킹 응답 DTO
type LeaderboardResponse struct {
	GuildID string            `json:"guildId"`
	Metric  string            `json:"metric"`
	Entries []LeaderboardItem `json:"entries"`
}

// UserStatsResponse: 사용자 통계 응답 DTO (초 단위)
type UserStatsResponse struct {
	GuildID        string     `json:"guildId"`
	UserID         string     `json:"userId"`
	TotalTime      int64      `json:"totalTime"`
	TotalWorkA     int64      `json:"totalWorkA"`
	TotalWorkB     int64      `json:"totalWorkB"`
	PauseTimeA     int64      `json:"pauseTimeA"`
	PauseTimeB     int64      `json:"pauseTimeB"`
	SessionsCount  int64      `json:"sessionsCount"`
	StreakCurrent  int64      `json:"streakCurrent"`
	StreakBest     int64      `json:"streakBest"`
	LongestSession int64      `json:"longestSession"`
	FirstSessionAt *time.Time `json:"firstSessionAt,omitempty"`
	LastSessionAt  *time.Time `json:"lastSessionAt,omitempty"`
}

// MaintenanceRequest: 점검 모드 변경 요청 DTO
type MaintenanceRequest struct {
	Enabled *bool `json:"enabled"`
}

// MaintenanceResponse: 점검 모드 변경 응답 DTO
type MaintenanceResponse struct {
	GuildID string `json:"guildId"`
	Enabled bool   `json:"enabled"`
	Ended   int    `json:"ended"`
}

func toActiveSessionResponse(info model.ActiveSessionInfo) ActiveSessionResponse {
	out := ActiveSessionResponse{
		UserID:         info.Session.UserID,
		Mode:           string(info.Session.Mode),
		StartTimestamp: info.Session.StartTimestamp,
		CreditedCycles: info.Session.CreditedCycles,
		Flagged:        info.Session.Flagged,
	}
	if info.StateErr != nil {
		out.Error = info.StateErr.Error()
		return out
	}
	out.Phase = string(info.Phase)
	out.Remaining = info.Remaining
	out.CompletedCycles = info.CompletedCycles
	out.Elapsed = info.Elapsed
	return out
}

func toUserStatsResponse(s model.UserStats) UserStatsResponse {
	return UserStatsResponse{
		GuildID:        s.GuildID,
		UserID:         s.UserID,
		TotalTime:      s.TotalTime,
		TotalWorkA:     s.TotalWorkA,
		TotalWorkB:     s.TotalWorkB,
		PauseTimeA:     s.PauseTimeA,
		PauseTimeB:     s.PauseTimeB,
		SessionsCount:  s.SessionsCount,
		StreakCurrent:  s.StreakCurrent,
		StreakBest:     s.StreakBest,
		LongestSession: s.LongestSession,
		FirstSessionAt: s.FirstSessionAt,
		LastSessionAt:  s.LastSessionAt,
	}
}
