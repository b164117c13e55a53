package mq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/accesscontrol"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	commonconfig "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	commonmq "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/assets"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	fredis "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/redis"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

type recordingPublisher struct {
	mu  sync.Mutex
	out []mqmsg.OutboundMessage
}

func (r *recordingPublisher) publish(_ context.Context, msg mqmsg.OutboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, msg)
	return nil
}

func (r *recordingPublisher) take() []mqmsg.OutboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.out
	r.out = nil
	return out
}

type mqFixture struct {
	clock     *clock.Fake
	ledger    *service.Ledger
	guilds    *service.GuildConfigService
	stats     *service.StatsService
	formatter *service.Formatter
	published *recordingPublisher
	svc       *FocusMessageService
}

func newMQFixture(t *testing.T, access commonconfig.AccessConfig) *mqFixture {
	t.Helper()
	logger := testhelper.DiscardLogger()

	repo := repository.New(testhelper.NewTestDB(t), repository.WithStreakPolicy(repository.StreakPolicy{Location: time.UTC}))
	if _, err := repo.Migrate(context.Background(), logger); err != nil {
		t.Fatal(err)
	}
	client, _ := testhelper.NewMiniredisClient(t)

	msgProvider, err := messageprovider.NewFromYAMLAtPath(assets.FocusMessagesYAML, "focus")
	if err != nil {
		t.Fatal(err)
	}

	f := &mqFixture{
		clock:     clock.NewFake(time.Unix(1_700_000_000, 0).UTC()),
		formatter: service.NewFormatter(msgProvider),
		published: &recordingPublisher{},
	}
	observations := fredis.NewScanStateStore(client, time.Hour, logger)
	f.ledger = service.NewLedger(repo, cycle.DefaultTable(), f.clock, observations, service.DefaultLedgerConfig(), logger)
	f.guilds = service.NewGuildConfigService(repo, f.clock, time.Minute, 100, logger)
	f.stats = service.NewStatsService(repo, f.clock, logger)
	maintenance := service.NewMaintenanceService(f.guilds, f.ledger, logger)

	handler := NewFocusCommandHandler(f.ledger, f.stats, maintenance, f.guilds, f.formatter, config.DefaultCommandPrefix, logger)
	sender := commonmq.NewMessageSender(msgProvider, f.published.publish, commonconfig.KakaoMessageMaxLength)
	f.svc = NewFocusMessageService(
		handler,
		NewCommandParser(""),
		sender,
		accesscontrol.New(access),
		config.AdminConfig{UserIDs: []string{"admin"}},
		f.stats,
		time.Minute,
		100,
		logger,
	)
	return f
}

func inbound(chatID, userID, sender, content string) mqmsg.InboundMessage {
	msg := mqmsg.InboundMessage{ChatID: chatID, UserID: userID, Content: content}
	if sender != "" {
		msg.Sender = &sender
	}
	return msg
}
