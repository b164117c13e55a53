// Package clock 은 현재 시각 조회를 추상화한다.
package clock

import (
	"sync"
	"time"
)

// Clock: 현재 시각을 제공한다.
type Clock interface {
	Now() time.Time
}

// System: 실제 시스템 시각
type System struct{}

// Now 는 time.Now 를 반환한다.
func (System) Now() time.Time { return time.Now() }

// Fake: 테스트에서 시각을 직접 조작하는 Clock
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake: 주어진 시각에서 시작하는 Fake 를 만든다.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now 는 현재 설정된 시각을 반환한다.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set 은 시각을 t 로 맞춘다.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance 는 시각을 d 만큼 앞으로 옮긴다.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
