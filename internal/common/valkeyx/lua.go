package valkeyx

import (
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ParseLuaInt64: 스크립트 결과를 int64 로 파싱한다.
func ParseLuaInt64(resp valkey.ValkeyResult) (int64, error) {
	value, err := resp.AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse lua int64 failed: %w", err)
	}
	return value, nil
}
