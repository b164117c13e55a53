// Package parser 는 접두사 기반 채팅 명령어 파서의 공통 부분을 제공한다.
package parser

import (
	"regexp"
	"strings"
)

// BaseParser: 도메인 파서가 임베드하는 접두사 처리기
type BaseParser struct {
	Prefix        string
	EscapedPrefix string
}

// NewBaseParser: prefix 가 비어있으면 defaultPrefix 를 사용한다.
func NewBaseParser(prefix, defaultPrefix string) BaseParser {
	p := strings.TrimSpace(prefix)
	if p == "" {
		p = defaultPrefix
	}
	return BaseParser{Prefix: p, EscapedPrefix: regexp.QuoteMeta(p)}
}

// TrimMessage: 공백을 정리하고, 접두사로 시작하지 않으면 빈 문자열을 반환한다.
func (b *BaseParser) TrimMessage(message string) string {
	text := strings.TrimSpace(message)
	if text == "" || !strings.HasPrefix(text, b.Prefix) {
		return ""
	}
	return text
}

// Body: 접두사 뒤의 본문을 공백 단위 토큰으로 나눈다.
func (b *BaseParser) Body(text string) []string {
	return strings.Fields(strings.TrimPrefix(text, b.Prefix))
}

// BuildPattern: 접두사를 앞에 붙인 정규식 (대소문자 무시)
func (b *BaseParser) BuildPattern(pattern string) *regexp.Regexp {
	return regexp.MustCompile("(?i)^" + b.EscapedPrefix + pattern)
}
