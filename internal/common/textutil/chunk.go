// Package textutil 은 채팅 메시지 길이 제한에 맞춘 텍스트 유틸리티를 제공한다.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// ChunkByLines: 줄 단위로 maxLength(룬 기준) 이하 청크를 만든다.
// 한 줄이 maxLength 를 넘으면 잘라낸다.
func ChunkByLines(input string, maxLength int) []string {
	if maxLength <= 0 {
		return []string{input}
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	for _, line := range strings.Split(input, "\n") {
		line = truncate(line, maxLength)
		n := utf8.RuneCountInString(line)

		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if len(current) > 0 && size+sep+n > maxLength {
			chunks = append(chunks, strings.Join(current, "\n"))
			current, size, sep = nil, 0, 0
		}
		current = append(current, line)
		size += sep + n
	}
	if size > 0 || len(current) > 1 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
