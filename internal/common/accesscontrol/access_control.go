// Package accesscontrol 은 설정 기반 채팅방/사용자 허용·차단 검사를 제공한다.
package accesscontrol

import (
	"slices"

	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
)

// AccessControl: 접근 제어 검사기. nil 이면 모두 허용한다.
type AccessControl struct {
	cfg commonconfig.AccessConfig
}

// New 는 AccessControl 을 만든다.
func New(cfg commonconfig.AccessConfig) *AccessControl {
	return &AccessControl{cfg: cfg}
}

// Check: 거부 사유를 에러로 반환한다. 허용이면 nil.
// 사용자 차단은 Enabled 여부와 무관하게 적용된다.
func (a *AccessControl) Check(userID, chatID string) error {
	if a == nil || a.cfg.Passthrough {
		return nil
	}
	if slices.Contains(a.cfg.BlockedUserIDs, userID) {
		return cerrors.UserBlockedError{UserID: userID}
	}
	if !a.cfg.Enabled {
		return nil
	}
	if slices.Contains(a.cfg.BlockedChatIDs, chatID) {
		return cerrors.ChatBlockedError{ChatID: chatID}
	}
	if len(a.cfg.AllowedChatIDs) > 0 && !slices.Contains(a.cfg.AllowedChatIDs, chatID) {
		return cerrors.AccessDeniedError{Reason: "chat not allowed: " + chatID}
	}
	return nil
}
