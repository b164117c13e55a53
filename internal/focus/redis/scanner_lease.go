package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/assets"
)

var (
	leaseAcquireScript = valkey.NewLuaScript(assets.LeaseAcquireLua)
	leaseReleaseScript = valkey.NewLuaScript(assets.LeaseReleaseLua)
)

// ScannerLease: 여러 프로세스 중 하나만 스캐너를 돌리도록 하는 Valkey 임대.
// 소유자는 Acquire 로 임대를 연장하고, 만료되면 다른 프로세스가 가져간다.
type ScannerLease struct {
	client valkey.Client
	owner  string
	ttl    time.Duration
}

// NewScannerLease: ttl 은 스캔 주기보다 길게 잡는다.
func NewScannerLease(client valkey.Client, owner string, ttl time.Duration) *ScannerLease {
	return &ScannerLease{client: client, owner: owner, ttl: ttl}
}

// Acquire: 임대를 얻거나 연장하면 true.
func (l *ScannerLease) Acquire(ctx context.Context) (bool, error) {
	resp := leaseAcquireScript.Exec(ctx, l.client,
		[]string{scannerLeaseKey},
		[]string{l.owner, strconv.FormatInt(l.ttl.Milliseconds(), 10)},
	)
	got, err := valkeyx.ParseLuaInt64(resp)
	if err != nil {
		return false, valkeyx.WrapRedisError("scanner_lease_acquire", err)
	}
	return got == 1, nil
}

// Release: 자신이 소유한 임대만 지운다.
func (l *ScannerLease) Release(ctx context.Context) error {
	resp := leaseReleaseScript.Exec(ctx, l.client, []string{scannerLeaseKey}, []string{l.owner})
	if _, err := valkeyx.ParseLuaInt64(resp); err != nil {
		return valkeyx.WrapRedisError("scanner_lease_release", err)
	}
	return nil
}
