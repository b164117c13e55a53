// Package messageprovider 는 YAML 메시지 템플릿을 점(.) 경로 키로 조회한다.
package messageprovider

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider: 템플릿 트리
type Provider struct {
	root map[string]any
}

// Param: 템플릿 치환 인자 ({key} → value)
type Param struct {
	Key   string
	Value any
}

// P 는 Param 을 만든다.
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

// NewFromYAMLAtPath: rootKey 아래 서브트리를 루트로 사용한다.
func NewFromYAMLAtPath(content string, rootKey string) (*Provider, error) {
	var root map[string]any
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("unmarshal yaml failed: %w", err)
	}
	if root == nil {
		root = map[string]any{}
	}

	rootKey = strings.TrimSpace(rootKey)
	if rootKey == "" {
		return &Provider{root: root}, nil
	}
	value, ok := lookup(root, rootKey)
	if !ok {
		return nil, fmt.Errorf("yaml root key not found: %q", rootKey)
	}
	sub, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("yaml root key must be a mapping: %q (got %T)", rootKey, value)
	}
	return &Provider{root: sub}, nil
}

// Get: 키에 해당하는 템플릿을 치환해 반환한다. 키가 없으면 키 자체를 반환한다.
func (p *Provider) Get(key string, params ...Param) string {
	if p == nil || strings.TrimSpace(key) == "" {
		return key
	}
	value, ok := lookup(p.root, key)
	if !ok {
		return key
	}
	template, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}
	if len(params) == 0 {
		return template
	}

	pairs := make([]string, 0, len(params)*2)
	for _, param := range params {
		pairs = append(pairs, "{"+param.Key+"}", fmt.Sprint(param.Value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Has: 키가 존재하는지 확인한다.
func (p *Provider) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := lookup(p.root, key)
	return ok
}

func lookup(root map[string]any, key string) (any, bool) {
	var current any = root
	for _, part := range strings.Split(key, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = node[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
