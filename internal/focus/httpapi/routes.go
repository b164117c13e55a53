// Package httpapi 는 집중 봇 관리용 HTTP API 를 제공한다.
package httpapi

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/health"
	commonhttputil "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/httputil"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

const (
	apiErrorInvalidRequest = "INVALID_REQUEST"
	apiErrorInvalidMetric  = "INVALID_METRIC"
	apiErrorNotFound       = "NOT_FOUND"
	apiErrorUnauthorized   = "UNAUTHORIZED"
	apiErrorInternalError  = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 16

// Deps: 관리 API 핸들러 의존성
type Deps struct {
	Ledger      *service.Ledger
	Stats       *service.StatsService
	Maintenance *service.MaintenanceService
	APIKey      string // 비어 있으면 인증 없음
	Checks      map[string]health.Check
	Logger      *slog.Logger
}

// NewHandler: 라우트를 등록하고 API 키 검사와 otelhttp 계측을 씌운 핸들러를 만든다.
func NewHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()
	Register(mux, deps)
	return otelhttp.NewHandler(requireAPIKey(mux, deps.APIKey), "focus-admin-api")
}

// Register: 관리 API 라우트 등록
func Register(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		resp := health.Evaluate(r.Context(), deps.Checks)
		status := http.StatusOK
		if resp.Status != health.StatusOK {
			status = http.StatusServiceUnavailable
		}
		_ = commonhttputil.WriteJSON(w, status, resp)
	})
	mux.HandleFunc("GET /api/guilds/{guild}/active", func(w http.ResponseWriter, r *http.Request) {
		handleActiveSessions(w, r, deps)
	})
	mux.HandleFunc("GET /api/guilds/{guild}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		handleLeaderboard(w, r, deps)
	})
	mux.HandleFunc("GET /api/guilds/{guild}/users/{user}/stats", func(w http.ResponseWriter, r *http.Request) {
		handleUserStats(w, r, deps)
	})
	mux.HandleFunc("POST /api/guilds/{guild}/maintenance", func(w http.ResponseWriter, r *http.Request) {
		handleMaintenance(w, r, deps)
	})
}

// requireAPIKey: /health 를 뺀 모든 경로에 X-API-Key 또는 Bearer 토큰을 요구한다.
func requireAPIKey(next http.Handler, apiKey string) http.Handler {
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		token := r.Header.Get(commonhttputil.HeaderAPIKey)
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			_ = commonhttputil.WriteErrorJSON(w, http.StatusUnauthorized, apiErrorUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleActiveSessions(w http.ResponseWriter, r *http.Request, deps Deps) {
	guildID := r.PathValue("guild")
	infos, err := deps.Ledger.ListActive(r.Context(), guildID)
	if err != nil {
		deps.Logger.Error("admin_active_sessions_failed", "guild_id", guildID, "err", err)
		_ = commonhttputil.WriteErrorJSON(w, http.StatusInternalServerError, apiErrorInternalError, "failed to list sessions")
		return
	}

	resp := ActiveSessionsResponse{GuildID: guildID, Sessions: make([]ActiveSessionResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Sessions = append(resp.Sessions, toActiveSessionResponse(info))
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, resp)
}

func handleLeaderboard(w http.ResponseWriter, r *http.Request, deps Deps) {
	guildID := r.PathValue("guild")
	metric, err := model.ParseLeaderboardMetric(strings.TrimSpace(r.URL.Query().Get("metric")))
	if err != nil {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidMetric, err.Error())
		return
	}

	entries, err := deps.Stats.GetLeaderboard(r.Context(), guildID, metric)
	if err != nil {
		var invalid *ferrors.InvalidMetricError
		if errors.As(err, &invalid) {
			_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidMetric, err.Error())
			return
		}
		deps.Logger.Error("admin_leaderboard_failed", "guild_id", guildID, "metric", metric, "err", err)
		_ = commonhttputil.WriteErrorJSON(w, http.StatusInternalServerError, apiErrorInternalError, "failed to load leaderboard")
		return
	}

	resp := LeaderboardResponse{GuildID: guildID, Metric: string(metric), Entries: make([]LeaderboardItem, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, LeaderboardItem{Rank: e.Rank, UserID: e.UserID, DisplayName: e.DisplayName, Value: e.Value})
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, resp)
}

func handleUserStats(w http.ResponseWriter, r *http.Request, deps Deps) {
	guildID, userID := r.PathValue("guild"), r.PathValue("user")
	stats, err := deps.Stats.GetUserStats(r.Context(), guildID, userID)
	if err != nil {
		deps.Logger.Error("admin_user_stats_failed", "guild_id", guildID, "user_id", userID, "err", err)
		_ = commonhttputil.WriteErrorJSON(w, http.StatusInternalServerError, apiErrorInternalError, "failed to load stats")
		return
	}
	if stats == nil {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusNotFound, apiErrorNotFound, "no stats for user")
		return
	}
	_ = commonhttputil.WriteJSON(w, http.StatusOK, toUserStatsResponse(*stats))
}

func handleMaintenance(w http.ResponseWriter, r *http.Request, deps Deps) {
	guildID := r.PathValue("guild")
	var req MaintenanceRequest
	if err := commonhttputil.ReadJSON(r, &req, maxBodyBytes); err != nil || req.Enabled == nil {
		_ = commonhttputil.WriteErrorJSON(w, http.StatusBadRequest, apiErrorInvalidRequest, `body must be {"enabled": bool}`)
		return
	}

	resp := MaintenanceResponse{GuildID: guildID, Enabled: *req.Enabled}
	if *req.Enabled {
		ended, err := deps.Maintenance.Activate(r.Context(), guildID)
		if err != nil {
			deps.Logger.Error("admin_maintenance_activate_failed", "guild_id", guildID, "err", err)
			_ = commonhttputil.WriteErrorJSON(w, http.StatusInternalServerError, apiErrorInternalError, "failed to activate maintenance")
			return
		}
		resp.Ended = ended
	} else if err := deps.Maintenance.Deactivate(r.Context(), guildID); err != nil {
		deps.Logger.Error("admin_maintenance_deactivate_failed", "guild_id", guildID, "err", err)
		_ = commonhttputil.WriteErrorJSON(w, http.StatusInternalServerError, apiErrorInternalError, "failed to deactivate maintenance")
		return
	}

	deps.Logger.Info("admin_maintenance_changed", "guild_id", guildID, "enabled", resp.Enabled, "ended", resp.Ended)
	_ = commonhttputil.WriteJSON(w, http.StatusOK, resp)
}
