// Package redis 는 집중 봇의 Valkey 상태 저장소(스캔 관측, 스캐너 임대)를 정의한다.
package redis

import "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"

const (
	scanStatePrefix = "focus:scan"
	scannerLeaseKey = "focus:scanner:lease"
)

func scanStateKey(guildID, userID string) string {
	return valkeyx.BuildKey(scanStatePrefix, guildID, userID)
}
