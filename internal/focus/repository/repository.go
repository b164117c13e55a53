package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/migrate"
)

// Repository: 집중 세션 저장소. 메서드는 도메인별 파일로 나뉜다:
//   - active_session.go: 진행 중 세션 행
//   - aggregator.go: 통계 반영 (트랜잭션 단위)
//   - stats.go: 통계/랭킹 조회, 초기화
//   - guild.go: 길드 설정
//   - profile.go: 표시 이름
type Repository struct {
	db     *gorm.DB
	streak StreakPolicy
}

// Option: Repository 설정
type Option func(*Repository)

// WithStreakPolicy: 연속 기록 날짜 경계 설정
func WithStreakPolicy(p StreakPolicy) Option {
	return func(r *Repository) { r.streak = p }
}

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB, opts ...Option) *Repository {
	r := &Repository{db: db, streak: DefaultStreakPolicy()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTx: fn 을 하나의 트랜잭션 안에서 실행한다. 이미 트랜잭션 안이면 세이브포인트로 중첩된다.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx, streak: r.streak})
	})
}

// Migrate: 버전 마이그레이션을 적용하고 최종 스키마 버전을 반환한다.
func (r *Repository) Migrate(ctx context.Context, logger *slog.Logger) (int, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("db is nil")
	}
	version, err := migrate.Run(ctx, r.db, Migrations(), logger)
	if err != nil {
		return version, cerrors.DatabaseError{Operation: "migrate", Err: err}
	}
	return version, nil
}

// CompositeUserStatsID: 사용자 통계 ID (GuildID:UserID)
func CompositeUserStatsID(guildID string, userID string) string {
	return strings.TrimSpace(guildID) + ":" + strings.TrimSpace(userID)
}

func (r *Repository) conn(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return r.db.WithContext(ctx), nil
}

func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbe cerrors.DatabaseError
	if errors.As(err, &dbe) {
		return err
	}
	return cerrors.DatabaseError{Operation: op, Err: err}
}
