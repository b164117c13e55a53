package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	json "github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/clock"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/cycle"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	fredis "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/redis"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/repository"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

type apiFixture struct {
	clock  *clock.Fake
	ledger *service.Ledger
	redis  *miniredis.Miniredis
	server *httptest.Server
}

func newAPIFixture(t *testing.T, apiKey string) *apiFixture {
	t.Helper()
	logger := testhelper.DiscardLogger()

	repo := repository.New(testhelper.NewTestDB(t), repository.WithStreakPolicy(repository.StreakPolicy{Location: time.UTC}))
	if _, err := repo.Migrate(context.Background(), logger); err != nil {
		t.Fatal(err)
	}
	client, mr := testhelper.NewMiniredisClient(t)

	f := &apiFixture{clock: clock.NewFake(time.Unix(1_700_000_000, 0).UTC()), redis: mr}
	f.ledger = service.NewLedger(repo, cycle.DefaultTable(), f.clock, fredis.NewScanStateStore(client, time.Hour, logger),
		service.DefaultLedgerConfig(), logger)
	guilds := service.NewGuildConfigService(repo, f.clock, time.Minute, 100, logger)

	f.server = httptest.NewServer(NewHandler(Deps{
		Ledger:      f.ledger,
		Stats:       service.NewStatsService(repo, f.clock, logger),
		Maintenance: service.NewMaintenanceService(guilds, f.ledger, logger),
		APIKey:      apiKey,
		Checks: map[string]health.Check{
			"valkey": func(ctx context.Context) error { return client.Do(ctx, client.B().Ping().Build()).Error() },
		},
		Logger: logger,
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestAdminAPI_Flow(t *testing.T) {
	f := newAPIFixture(t, "")
	ctx := context.Background()

	for _, u := range []string{"u1", "u2"} {
		if res, err := f.ledger.Join(ctx, "g1", u, model.ModeA); err != nil || res != model.JoinCreated {
			t.Fatalf("join %s: %v %v", u, res, err)
		}
	}
	f.clock.Advance(3599 * time.Second)

	resp := f.do(t, http.MethodGet, "/api/guilds/g1/active", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("active status = %d", resp.StatusCode)
	}
	active := decode[ActiveSessionsResponse](t, resp)
	if len(active.Sessions) != 2 {
		t.Fatalf("sessions = %+v", active.Sessions)
	}
	if s := active.Sessions[0]; s.Phase != "break" || s.Remaining != 1 || s.CompletedCycles != 0 {
		t.Errorf("session state = %+v", s)
	}

	resp = f.do(t, http.MethodPost, "/api/guilds/g1/maintenance", `{"enabled":true}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("maintenance status = %d", resp.StatusCode)
	}
	if m := decode[MaintenanceResponse](t, resp); !m.Enabled || m.Ended != 2 {
		t.Errorf("maintenance = %+v", m)
	}

	resp = f.do(t, http.MethodGet, "/api/guilds/g1/users/u1/stats", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	if s := decode[UserStatsResponse](t, resp); s.TotalWorkA != 3000 || s.PauseTimeA != 599 || s.SessionsCount != 1 {
		t.Errorf("stats = %+v", s)
	}

	resp = f.do(t, http.MethodGet, "/api/guilds/g1/leaderboard?metric=sessions_count", "", nil)
	if lb := decode[LeaderboardResponse](t, resp); lb.Metric != "sessions_count" || len(lb.Entries) != 2 || lb.Entries[0].UserID != "u1" {
		t.Errorf("leaderboard = %+v", lb)
	}
}

func TestAdminAPI_Errors(t *testing.T) {
	f := newAPIFixture(t, "")

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/guilds/g1/leaderboard?metric=bogus", "", http.StatusBadRequest},
		{http.MethodGet, "/api/guilds/g1/users/nobody/stats", "", http.StatusNotFound},
		{http.MethodPost, "/api/guilds/g1/maintenance", `{}`, http.StatusBadRequest},
		{http.MethodPost, "/api/guilds/g1/maintenance", ``, http.StatusBadRequest},
		{http.MethodGet, "/api/guilds/g1/maintenance", ``, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if resp := f.do(t, tt.method, tt.path, tt.body, nil); resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAdminAPI_APIKey(t *testing.T) {
	f := newAPIFixture(t, "secret")

	if resp := f.do(t, http.MethodGet, "/health", "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("health must stay open, got %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/guilds/g1/active", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing key status = %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/guilds/g1/active", "", map[string]string{"X-API-Key": "secret"}); resp.StatusCode != http.StatusOK {
		t.Errorf("api key header status = %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/guilds/g1/active", "", map[string]string{"Authorization": "Bearer secret"}); resp.StatusCode != http.StatusOK {
		t.Errorf("bearer status = %d", resp.StatusCode)
	}
}

func TestAdminAPI_HealthReportsComponents(t *testing.T) {
	f := newAPIFixture(t, "")

	resp := f.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body health.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Components["valkey"] != health.StatusOK {
		t.Fatalf("components = %v", body.Components)
	}

	f.redis.Close()
	if resp := f.do(t, http.MethodGet, "/health", "", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status after valkey loss = %d", resp.StatusCode)
	}
}
