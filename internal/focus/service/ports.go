package service

import (
	"context"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
)

// ObservationStore: 스캐너가 세션별로 마지막에 본 상태를 보관한다.
type ObservationStore interface {
	Get(ctx context.Context, guildID, userID string) (*model.ScanObservation, error)
	Put(ctx context.Context, guildID, userID string, obs model.ScanObservation) error
	Clear(ctx context.Context, guildID, userID string) error
}

// Lease: 여러 프로세스 중 하나만 스캔하도록 하는 임대
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Notifier: 주기 전환 알림 전송. 실패는 호출자가 로그만 남긴다.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}
