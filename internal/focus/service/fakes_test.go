package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
)

type memoryObservations struct {
	mu   sync.Mutex
	data map[string]model.ScanObservation
}

func newMemoryObservations() *memoryObservations {
	return &memoryObservations{data: map[string]model.ScanObservation{}}
}

func (m *memoryObservations) Get(_ context.Context, guildID, userID string) (*model.ScanObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obs, ok := m.data[guildID+":"+userID]
	if !ok {
		return nil, nil
	}
	return &obs, nil
}

func (m *memoryObservations) Put(_ context.Context, guildID, userID string, obs model.ScanObservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[guildID+":"+userID] = obs
	return nil
}

func (m *memoryObservations) Clear(_ context.Context, guildID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, guildID+":"+userID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []model.Notification
	failOn string // 이 사용자에게 가는 알림은 실패한다
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && n.UserID == r.failOn {
		return errors.New("notifier unavailable")
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Kind)
	}
	return out
}

type staticLease struct{ granted bool }

func (l staticLease) Acquire(context.Context) (bool, error) { return l.granted, nil }
func (l staticLease) Release(context.Context) error         { return nil }

type fixture struct {
	db           *gorm.DB
	repo         *repository.Repository
	clock        *clock.Fake
	observations *memoryObservations
	notifier     *recordingNotifier
	ledger       *Ledger
	scanner      *Scanner
	guilds       *GuildConfigService
	maintenance  *MaintenanceService
	stats        *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testhelper.DiscardLogger()
	db := testhelper.NewTestDB(t)
	repo := repository.New(db, repository.WithStreakPolicy(repository.StreakPolicy{Location: time.UTC}))
	if _, err := repo.Migrate(context.Background(), logger); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		db:           db,
		repo:         repo,
		clock:        clock.NewFake(time.Unix(1_700_000_000, 0).UTC()),
		observations: newMemoryObservations(),
		notifier:     &recordingNotifier{},
	}
	table := cycle.DefaultTable()
	f.ledger = NewLedger(repo, table, f.clock, f.observations, LedgerConfig{ForceEndBackoff: time.Millisecond}, logger)
	f.scanner = NewScanner(repo, table, f.clock, f.observations, nil, f.notifier, ScannerConfig{Concurrency: 4}, logger)
	f.guilds = NewGuildConfigService(repo, f.clock, time.Minute, 100, logger)
	f.maintenance = NewMaintenanceService(f.guilds, f.ledger, logger)
	f.stats = NewStatsService(repo, f.clock, logger)
	return f
}

func (f *fixture) advance(seconds int64) {
	f.clock.Advance(time.Duration(seconds) * time.Second)
}

func (f *fixture) mustJoin(t *testing.T, guildID, userID string, mode model.Mode) {
	t.Helper()
	res, err := f.ledger.Join(context.Background(), guildID, userID, mode)
	if err != nil {
		t.Fatal(err)
	}
	if res != model.JoinCreated {
		t.Fatalf("join %s/%s = %s", guildID, userID, res)
	}
}

var errInjectedWrite = errors.New("injected write failure")

// failWritesFor: userID 를 조건으로 쓰는 UPDATE/DELETE 를 처음 n 번 실패시킨다. n < 0 이면 계속 실패한다.
// 문장은 실행된 뒤 에러가 붙으므로 트랜잭션 전체가 롤백된다. 실패시킨 횟수를 반환한다.
func (f *fixture) failWritesFor(t *testing.T, userID string, n int32) *atomic.Int32 {
	t.Helper()
	var failed atomic.Int32
	inject := func(db *gorm.DB) {
		if db.Error != nil || !slices.Contains(db.Statement.Vars, any(userID)) {
			return
		}
		if n >= 0 && failed.Load() >= n {
			return
		}
		failed.Add(1)
		_ = db.AddError(errInjectedWrite)
	}
	name := fmt.Sprintf("test:fail_%s", userID)
	if err := f.db.Callback().Delete().After("gorm:delete").Register(name+"_delete", inject); err != nil {
		t.Fatal(err)
	}
	if err := f.db.Callback().Update().After("gorm:update").Register(name+"_update", inject); err != nil {
		t.Fatal(err)
	}
	return &failed
}
