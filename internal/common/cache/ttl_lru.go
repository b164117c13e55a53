package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLLRUCache: 항목 수 상한과 TTL 을 함께 갖는 LRU 캐시입니다. nil 수신자는 항상 miss 입니다.
type TTLLRUCache[V any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	items      map[string]*list.Element
	order      *list.List
	now        func() time.Time
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewTTLLRUCache: maxEntries 또는 ttl 이 0 이하이면 nil 을 반환합니다.
func NewTTLLRUCache[V any](maxEntries int, ttl time.Duration) *TTLLRUCache[V] {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}
	return &TTLLRUCache[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		items:      make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		now:        time.Now,
	}
}

// WithClock: 테스트용 시간 함수를 주입합니다.
func (c *TTLLRUCache[V]) WithClock(now func() time.Time) *TTLLRUCache[V] {
	if c != nil && now != nil {
		c.now = now
	}
	return c
}

// Get: 만료되지 않은 값을 조회하고 최근 사용으로 표시합니다.
func (c *TTLLRUCache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(entry[V])
	if !e.expiresAt.After(c.now()) {
		c.removeElement(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Set: 값을 저장하고 상한을 넘으면 가장 오래된 항목부터 밀어냅니다.
func (c *TTLLRUCache[V]) Set(key string, value V) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

// SeenOrMark: 키가 살아있으면 true, 없으면 저장하고 false 를 반환합니다. (중복 메시지 판별)
func (c *TTLLRUCache[V]) SeenOrMark(key string, value V) bool {
	if c == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		if elem.Value.(entry[V]).expiresAt.After(c.now()) {
			return true
		}
		c.removeElement(elem)
	}
	c.setLocked(key, value)
	return false
}

// Delete: 항목을 제거합니다.
func (c *TTLLRUCache[V]) Delete(key string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Len: 현재 보관 중인 항목 수 (만료 미정리 포함)
func (c *TTLLRUCache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *TTLLRUCache[V]) setLocked(key string, value V) {
	e := entry[V]{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)

	for len(c.items) > c.maxEntries {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}
}

func (c *TTLLRUCache[V]) removeElement(elem *list.Element) {
	delete(c.items, elem.Value.(entry[V]).key)
	c.order.Remove(elem)
}
