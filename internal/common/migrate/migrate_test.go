package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	var applied []int
	migrations := []Migration{
		{Version: 2, Description: "seed", Up: func(tx *gorm.DB) error {
			applied = append(applied, 2)
			return tx.Create(&widget{Name: "first"}).Error
		}},
		{Version: 1, Description: "create widgets", Up: func(tx *gorm.DB) error {
			applied = append(applied, 1)
			return tx.AutoMigrate(&widget{})
		}},
	}

	version, err := Run(ctx, db, migrations, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if len(applied) != 2 || applied[0] != 1 || applied[1] != 2 {
		t.Errorf("expected ascending order, got %v", applied)
	}

	t.Run("rerun is a no-op", func(t *testing.T) {
		applied = nil
		version, err := Run(ctx, db, migrations, nil)
		if err != nil {
			t.Fatal(err)
		}
		if version != 2 || len(applied) != 0 {
			t.Errorf("expected nothing applied, version=%d applied=%v", version, applied)
		}
	})

	t.Run("failed migration is not recorded", func(t *testing.T) {
		broken := append(migrations, Migration{Version: 3, Description: "broken", Up: func(*gorm.DB) error {
			return errors.New("boom")
		}})
		version, err := Run(ctx, db, broken, nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if version != 2 {
			t.Errorf("expected version to stay at 2, got %d", version)
		}
		current, err := CurrentVersion(ctx, db)
		if err != nil {
			t.Fatal(err)
		}
		if current != 2 {
			t.Errorf("expected recorded version 2, got %d", current)
		}
	})

	t.Run("duplicate versions rejected", func(t *testing.T) {
		dup := []Migration{migrations[0], migrations[0]}
		if _, err := Run(ctx, db, dup, nil); err == nil {
			t.Fatal("expected duplicate error")
		}
	})
}
