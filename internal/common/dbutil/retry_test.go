package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestOpenWithRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		path := filepath.Join(t.TempDir(), "nested", "bot.db")
		openFn := func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
			calls++
			if calls < 3 {
				return nil, nil, errors.New("not ready")
			}
			return OpenSQLite(ctx, path)
		}

		db, sqlDB, err := OpenWithRetry(context.Background(), openFn, cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Cleanup(func() { _ = sqlDB.Close() })
		if db == nil || calls != 3 {
			t.Fatalf("expected 3 calls and a db, got calls=%d", calls)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		openFn := func(context.Context) (*gorm.DB, *sql.DB, error) {
			calls++
			return nil, nil, errors.New("down")
		}
		if _, _, err := OpenWithRetry(context.Background(), openFn, cfg, nil); err == nil {
			t.Fatal("expected error")
		}
		if calls != cfg.MaxAttempts {
			t.Errorf("expected %d calls, got %d", cfg.MaxAttempts, calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		openFn := func(context.Context) (*gorm.DB, *sql.DB, error) {
			return nil, nil, errors.New("down")
		}
		if _, _, err := OpenWithRetry(ctx, openFn, RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour}, nil); err == nil {
			t.Fatal("expected error")
		}
	})
}
