// Package valkeyx 는 Valkey 클라이언트 공통 유틸리티를 제공한다.
package valkeyx

import "strings"

// BuildKey: prefix 와 id 들을 ':' 로 결합한다. 형식: {prefix}:{id1}:{id2}...
func BuildKey(prefix string, ids ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(id))
	}
	return b.String()
}
