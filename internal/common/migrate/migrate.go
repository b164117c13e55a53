// Package migrate 는 gorm 위에서 버전 기반 스키마 마이그레이션을 순서대로 적용한다.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"gorm.io/gorm"
)

// Migration: 한 버전으로 올리는 스키마 변경 단위
type Migration struct {
	Version     int
	Description string
	Up          func(tx *gorm.DB) error
}

// SchemaMigration: 적용된 마이그레이션 기록 테이블
type SchemaMigration struct {
	Version     int       `gorm:"primaryKey;autoIncrement:false"`
	Description string    `gorm:"size:255;not null"`
	AppliedAt   time.Time `gorm:"not null"`
}

// TableName: gorm 테이블 이름
func (SchemaMigration) TableName() string { return "schema_migrations" }

// Run: 현재 버전보다 높은 마이그레이션을 버전 순으로 각각 트랜잭션 안에서 적용하고 최종 버전을 반환한다.
func Run(ctx context.Context, db *gorm.DB, migrations []Migration, logger *slog.Logger) (int, error) {
	if err := validate(migrations); err != nil {
		return 0, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("create schema_migrations failed: %w", err)
	}

	version, err := CurrentVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int { return a.Version - b.Version })

	for _, m := range sorted {
		if m.Version <= version {
			continue
		}
		if logger != nil {
			logger.Info("applying_migration", slog.Int("version", m.Version), slog.String("description", m.Description))
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:     m.Version,
				Description: m.Description,
				AppliedAt:   time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return version, fmt.Errorf("migration to v%d failed: %w", m.Version, err)
		}
		version = m.Version
	}
	return version, nil
}

// CurrentVersion: 적용된 가장 높은 버전 (없으면 0)
func CurrentVersion(ctx context.Context, db *gorm.DB) (int, error) {
	var version int
	err := db.WithContext(ctx).
		Model(&SchemaMigration{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("read schema version failed: %w", err)
	}
	return version, nil
}

func validate(migrations []Migration) error {
	seen := make(map[int]struct{}, len(migrations))
	for _, m := range migrations {
		if m.Version <= 0 {
			return fmt.Errorf("migration version must be positive: %d", m.Version)
		}
		if m.Up == nil {
			return fmt.Errorf("migration v%d has no Up", m.Version)
		}
		if _, dup := seen[m.Version]; dup {
			return fmt.Errorf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = struct{}{}
	}
	return nil
}
