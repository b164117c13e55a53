package mq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	commonmq "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

// NotifierConfig: 알림 전송 속도와 호출당 제한 시간
type NotifierConfig struct {
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// ReplyNotifier: 주기 전환 알림을 길드 알림 채널(없으면 길드 방)로 발행한다.
type ReplyNotifier struct {
	publish   commonmq.PublishFunc
	guilds    *service.GuildConfigService
	stats     *service.StatsService
	formatter *service.Formatter
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    *slog.Logger
}

// NewReplyNotifier: RatePerSecond 가 0 이하이면 속도 제한 없이 보낸다.
func NewReplyNotifier(
	publish commonmq.PublishFunc,
	guilds *service.GuildConfigService,
	stats *service.StatsService,
	formatter *service.Formatter,
	cfg NotifierConfig,
	logger *slog.Logger,
) *ReplyNotifier {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &ReplyNotifier{
		publish:   publish,
		guilds:    guilds,
		stats:     stats,
		formatter: formatter,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

var _ service.Notifier = (*ReplyNotifier)(nil)

// Notify: 속도 제한을 기다린 뒤 알림을 발행한다. 제한 시간 안에 못 보내면 에러.
func (n *ReplyNotifier) Notify(ctx context.Context, notification model.Notification) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notify rate limit wait failed: %w", err)
	}

	cfg, err := n.guilds.Get(ctx, notification.GuildID)
	if err != nil {
		return fmt.Errorf("load guild config failed: %w", err)
	}
	target := cfg.PomodoroChannel
	if target == "" {
		target = notification.GuildID
	}

	text := n.formatter.Notification(n.mention(ctx, cfg, notification), notification)
	if err := n.publish(ctx, mqmsg.NewFinal(target, text, nil)); err != nil {
		return fmt.Errorf("publish notification failed: %w", err)
	}
	n.logger.Debug("notification_sent", "guild_id", notification.GuildID, "user_id", notification.UserID,
		"kind", notification.Kind, "target", target)
	return nil
}

// mention: "@이름", 모드 역할이 설정돼 있으면 역할 멘션을 앞에 붙인다.
func (n *ReplyNotifier) mention(ctx context.Context, cfg model.GuildConfig, notification model.Notification) string {
	out := "@" + n.stats.DisplayName(ctx, notification.GuildID, notification.UserID, notification.UserID)
	if role := cfg.RoleFor(notification.Mode); role != "" {
		out = "@" + role + " " + out
	}
	return out
}
