package service

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
)

// StatsService: 통계/랭킹 조회와 길드 초기화
type StatsService struct {
	repo   *repository.Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewStatsService: 새로운 StatsService 인스턴스를 생성한다.
func NewStatsService(repo *repository.Repository, clk clock.Clock, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{repo: repo, clock: clk, logger: logger}
}

// GetUserStats: 기록이 없으면 nil.
func (s *StatsService) GetUserStats(ctx context.Context, guildID, userID string) (*model.UserStats, error) {
	return s.repo.GetUserStats(ctx, guildID, userID)
}

// GetLeaderboard: 지표별 상위 사용자. 지표가 잘못되면 InvalidMetricError.
func (s *StatsService) GetLeaderboard(ctx context.Context, guildID string, metric model.LeaderboardMetric) ([]model.LeaderboardEntry, error) {
	if !metric.Valid() {
		return nil, &ferrors.InvalidMetricError{Metric: string(metric)}
	}
	return s.repo.TopUserStats(ctx, guildID, metric, metric.Limit())
}

// DisplayName: 표시 이름이 없으면 fallback
func (s *StatsService) DisplayName(ctx context.Context, guildID, userID, fallback string) string {
	name, err := s.repo.DisplayName(ctx, guildID, userID)
	if err != nil {
		s.logger.Warn("display_name_lookup_failed", slog.String("user_id", userID), slog.Any("error", err))
	}
	if name == "" {
		return fallback
	}
	return name
}

// TouchProfile: 명령을 보낸 사용자의 이름을 기록한다.
func (s *StatsService) TouchProfile(ctx context.Context, guildID, userID, displayName string) error {
	return s.repo.TouchProfile(ctx, guildID, userID, displayName, s.clock.Now())
}

// ResetGuild: 길드 통계와 기록을 모두 지운다.
func (s *StatsService) ResetGuild(ctx context.Context, guildID string) (repository.ResetResult, error) {
	res, err := s.repo.ResetGuild(ctx, guildID)
	if err != nil {
		return res, err
	}
	s.logger.Warn("guild_stats_reset",
		slog.String("guild_id", guildID),
		slog.Int64("stats", res.StatsDeleted),
		slog.Int64("records", res.RecordsDeleted),
	)
	return res, nil
}
