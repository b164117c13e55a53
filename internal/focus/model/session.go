package model

import "time"

// ActiveSession: 현재 집중 시간을 쌓고 있는 사용자 세션
type ActiveSession struct {
	GuildID        string
	UserID         string
	StartTimestamp int64
	Mode           Mode
	CreditedCycles int64
	Flagged        bool
}

// ActiveSessionInfo: 세션과 현재 주기 상태
type ActiveSessionInfo struct {
	Session         ActiveSession
	Phase           Phase
	Remaining       int64
	CompletedCycles int64
	Elapsed         int64
	// StateErr: 주기 계산 실패 사유 (알 수 없는 모드, 시계 역행)
	StateErr error
}

// JoinResult: 참가 결과
type JoinResult int

// JoinResult 값.
const (
	JoinCreated JoinResult = iota
	JoinAlreadyActive
	JoinMaintenance
)

func (r JoinResult) String() string {
	switch r {
	case JoinCreated:
		return "created"
	case JoinAlreadyActive:
		return "already_active"
	case JoinMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// SessionSummary: 종료된 세션 전체의 시간 배분 (초)
type SessionSummary struct {
	GuildID        string
	UserID         string
	Mode           Mode
	StartTimestamp int64
	WorkTime       int64
	PauseTime      int64
	TotalElapsed   int64
	Cycles         int64
}

// LeaveStatus: 종료 결과 종류
type LeaveStatus int

// LeaveStatus 값.
const (
	LeaveEnded LeaveStatus = iota
	LeaveNotActive
)

// LeaveResult: 종료 결과. Status 가 LeaveEnded 일 때만 Summary 가 유효하다.
type LeaveResult struct {
	Status  LeaveStatus
	Summary SessionSummary
}

// ForceEndReport: 일괄 종료 결과
type ForceEndReport struct {
	Ended  []SessionSummary
	Failed []string // 실패한 user_id
}

// ScanObservation: 스캐너가 마지막으로 본 세션 상태
type ScanObservation struct {
	StartTimestamp  int64     `json:"startTimestamp"`
	Phase           Phase     `json:"phase"`
	CompletedCycles int64     `json:"completedCycles"`
	ObservedAt      time.Time `json:"observedAt"`
}
