// Package health: /health 응답과 구성 요소 점검
package health

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"
)

var (
	startTime = time.Now()
	version   = "dev"
	initOnce  sync.Once
)

// Init: 시작 시각과 버전을 기록한다. 두 번째 호출부터는 무시된다.
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Check: 구성 요소 하나를 점검한다. nil 이면 정상.
type Check func(ctx context.Context) error

// Status 값
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Response: /health 응답 본문
type Response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Components map[string]string `json:"components,omitempty"`
}

// Get: 점검 없이 프로세스 상태만
func Get() Response {
	return Response{
		Status:     StatusOK,
		Version:    version,
		Uptime:     time.Since(startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
}

// Evaluate: checks 를 순서대로 돌려 실패한 구성 요소가 있으면 degraded 로 표시한다.
func Evaluate(ctx context.Context, checks map[string]Check) Response {
	resp := Get()
	if len(checks) == 0 {
		return resp
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp.Components = make(map[string]string, len(checks))
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			resp.Components[name] = err.Error()
			resp.Status = StatusDegraded
			continue
		}
		resp.Components[name] = StatusOK
	}
	return resp
}
