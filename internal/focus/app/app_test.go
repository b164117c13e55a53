package app

import (
	"context"
	"strings"
	"testing"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	fredis "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/redis"
)

func TestWiringAssemblesServerApp(t *testing.T) {
	t.Setenv("SERVER_PORT", "40261")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	logger := testhelper.DiscardLogger()
	ctx := context.Background()

	msgProvider, err := newFocusMessageProvider()
	if err != nil {
		t.Fatalf("message provider: %v", err)
	}
	db := testhelper.NewTestDB(t)
	repo, err := newFocusRepository(ctx, cfg, db, logger)
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	client, _ := testhelper.NewMiniredisClient(t)
	dataValkey := bootstrap.DataValkeyClient{Client: client}
	mqValkey := bootstrap.MQValkeyClient{Client: client}

	observations := fredis.NewScanStateStore(client, 0, logger)
	services := newFocusServices(cfg, repo, observations, msgProvider, logger)
	publisher := newFocusReplyPublisher(cfg, mqValkey, logger)
	scanner := newFocusScanner(cfg, repo, dataValkey, observations, services, publisher, logger)
	pipeline := newFocusMQPipeline(cfg, mqValkey, msgProvider, services, publisher, logger)
	checks := newFocusHealthChecks(db, dataValkey, mqValkey)
	server := newFocusHTTPServer(cfg, services, checks, logger)

	serverApp := newFocusServerApp(logger, server, pipeline, scanner)
	if serverApp.Bot != config.BotName {
		t.Fatalf("bot = %q", serverApp.Bot)
	}
	if len(serverApp.BackgroundTasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(serverApp.BackgroundTasks))
	}
	if !strings.HasSuffix(server.Addr, ":40261") {
		t.Fatalf("addr = %q", server.Addr)
	}

	for name, check := range checks {
		if err := check(ctx); err != nil {
			t.Fatalf("health check %s: %v", name, err)
		}
	}

	if _, err := services.ledger.Join(ctx, "g1", "u1", model.ModeA); err != nil {
		t.Fatalf("join through wired ledger: %v", err)
	}
	report, err := scanner.ScanOnce(ctx)
	if err != nil {
		t.Fatalf("scan once: %v", err)
	}
	if report.Scanned != 1 {
		t.Fatalf("scanned = %d, want 1", report.Scanned)
	}
}

func TestLeaseOwnerIsProcessScoped(t *testing.T) {
	owner := leaseOwner()
	if owner == "" || !strings.Contains(owner, "-") {
		t.Fatalf("owner = %q", owner)
	}
}
