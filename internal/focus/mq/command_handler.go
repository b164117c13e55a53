package mq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/messages"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/model"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

// FocusCommandHandler: 명령 종류별로 서비스를 호출하고 응답 문구를 만든다.
type FocusCommandHandler struct {
	ledger      *service.Ledger
	stats       *service.StatsService
	maintenance *service.MaintenanceService
	guilds      *service.GuildConfigService
	formatter   *service.Formatter
	prefix      string
	logger      *slog.Logger
	handlers    map[CommandKind]commandHandlerFunc
}

type commandHandlerFunc func(context.Context, mqmsg.InboundMessage, Command) (string, error)

// NewFocusCommandHandler 는 명령별 핸들러를 등록한 FocusCommandHandler 를 만든다.
func NewFocusCommandHandler(
	ledger *service.Ledger,
	stats *service.StatsService,
	maintenance *service.MaintenanceService,
	guilds *service.GuildConfigService,
	formatter *service.Formatter,
	prefix string,
	logger *slog.Logger,
) *FocusCommandHandler {
	h := &FocusCommandHandler{
		ledger:      ledger,
		stats:       stats,
		maintenance: maintenance,
		guilds:      guilds,
		formatter:   formatter,
		prefix:      prefix,
		logger:      logger,
	}

	h.handlers = map[CommandKind]commandHandlerFunc{
		CommandHelp:        h.handleHelp,
		CommandJoin:        h.handleJoin,
		CommandLeave:       h.handleLeave,
		CommandStatus:      h.handleStatus,
		CommandUserStats:   h.handleUserStats,
		CommandLeaderboard: h.handleLeaderboard,
		CommandMaintenance: h.handleMaintenance,
		CommandConfig:      h.handleConfig,
		CommandReset:       h.handleReset,
		CommandUnknown:     h.handleUnknown,
	}
	return h
}

// ProcessCommand: 명령을 실행해 응답 문구를 반환한다.
func (h *FocusCommandHandler) ProcessCommand(ctx context.Context, message mqmsg.InboundMessage, command Command) (string, error) {
	handler, ok := h.handlers[command.Kind]
	if !ok {
		h.logger.Debug("command_kind_unhandled", "kind", command.Kind)
		return h.msg(messages.UnknownCommand), nil
	}
	return handler(ctx, message, command)
}

func (h *FocusCommandHandler) msg(key string, params ...messageprovider.Param) string {
	params = append(params, messageprovider.P("prefix", h.prefix))
	return h.formatter.Messages().Get(key, params...)
}

func (h *FocusCommandHandler) name(message mqmsg.InboundMessage) string {
	return message.SenderName(message.UserID)
}

func (h *FocusCommandHandler) handleHelp(_ context.Context, _ mqmsg.InboundMessage, _ Command) (string, error) {
	return h.msg(messages.Help), nil
}

func (h *FocusCommandHandler) handleUnknown(_ context.Context, _ mqmsg.InboundMessage, command Command) (string, error) {
	if command.Usage != "" {
		return h.msg(command.Usage), nil
	}
	return h.msg(messages.UnknownCommand), nil
}

func (h *FocusCommandHandler) handleJoin(ctx context.Context, message mqmsg.InboundMessage, command Command) (string, error) {
	if command.Mode == "" {
		return h.msg(messages.JoinUsage), nil
	}
	mode, err := model.ParseMode(command.Mode)
	if err != nil {
		return "", err
	}
	durations, err := h.ledger.Table().Lookup(mode)
	if err != nil {
		return "", err
	}

	result, err := h.ledger.Join(ctx, message.ChatID, message.UserID, mode)
	if err != nil {
		return "", fmt.Errorf("join failed: %w", err)
	}
	switch result {
	case model.JoinMaintenance:
		return h.msg(messages.JoinMaintenance), nil
	case model.JoinAlreadyActive:
		return h.msg(messages.JoinAlreadyActive, messageprovider.P("name", h.name(message))), nil
	default:
		return h.msg(messages.JoinCreated,
			messageprovider.P("name", h.name(message)),
			messageprovider.P("mode", string(mode)),
			messageprovider.P("work", h.formatter.Duration(durations.Work)),
			messageprovider.P("break", h.formatter.Duration(durations.Break)),
		), nil
	}
}

func (h *FocusCommandHandler) handleLeave(ctx context.Context, message mqmsg.InboundMessage, _ Command) (string, error) {
	result, err := h.ledger.Leave(ctx, message.ChatID, message.UserID)
	if err != nil {
		return "", fmt.Errorf("leave failed: %w", err)
	}
	if result.Status == model.LeaveNotActive {
		return h.msg(messages.LeaveNotActive, messageprovider.P("name", h.name(message))), nil
	}
	return h.formatter.Summary(h.name(message), result.Summary), nil
}

func (h *FocusCommandHandler) handleStatus(ctx context.Context, message mqmsg.InboundMessage, _ Command) (string, error) {
	info, err := h.ledger.Status(ctx, message.ChatID, message.UserID)
	if err != nil {
		return "", fmt.Errorf("status failed: %w", err)
	}
	if info == nil {
		return h.msg(messages.StatusNotActive, messageprovider.P("name", h.name(message))), nil
	}
	return h.formatter.Status(h.name(message), *info), nil
}

func (h *FocusCommandHandler) handleUserStats(ctx context.Context, message mqmsg.InboundMessage, _ Command) (string, error) {
	stats, err := h.stats.GetUserStats(ctx, message.ChatID, message.UserID)
	if err != nil {
		return "", fmt.Errorf("get user stats failed: %w", err)
	}
	return h.formatter.UserStats(h.name(message), stats), nil
}

func (h *FocusCommandHandler) handleLeaderboard(ctx context.Context, message mqmsg.InboundMessage, command Command) (string, error) {
	metric, err := model.ParseLeaderboardMetric(command.Metric)
	if err != nil {
		return "", err
	}
	entries, err := h.stats.GetLeaderboard(ctx, message.ChatID, metric)
	if err != nil {
		return "", fmt.Errorf("get leaderboard failed: %w", err)
	}
	return h.formatter.Leaderboard(metric, entries), nil
}

func (h *FocusCommandHandler) handleMaintenance(ctx context.Context, message mqmsg.InboundMessage, command Command) (string, error) {
	if !command.Enable {
		if err := h.maintenance.Deactivate(ctx, message.ChatID); err != nil {
			return "", fmt.Errorf("maintenance deactivate failed: %w", err)
		}
		return h.msg(messages.MaintenanceOff), nil
	}

	ended, err := h.maintenance.Activate(ctx, message.ChatID)
	if err != nil {
		return "", fmt.Errorf("maintenance activate failed: %w", err)
	}
	h.logger.Info("maintenance_activated_by_command", "chat_id", message.ChatID, "user_id", message.UserID, "ended", ended)
	return h.msg(messages.MaintenanceOn, messageprovider.P("count", ended)), nil
}

func (h *FocusCommandHandler) handleConfig(ctx context.Context, message mqmsg.InboundMessage, command Command) (string, error) {
	var err error
	switch command.Field {
	case ConfigFieldChannel:
		if err = h.guilds.SetChannel(ctx, message.ChatID, command.Value); err == nil {
			return h.msg(messages.ConfigChannel, messageprovider.P("value", command.Value)), nil
		}
	case ConfigFieldRoleA, ConfigFieldRoleB:
		mode := model.ModeA
		if command.Field == ConfigFieldRoleB {
			mode = model.ModeB
		}
		if err = h.guilds.SetRole(ctx, message.ChatID, mode, command.Value); err == nil {
			return h.msg(messages.ConfigRole,
				messageprovider.P("mode", string(mode)),
				messageprovider.P("value", command.Value),
			), nil
		}
	default:
		return h.msg(messages.ConfigUsage), nil
	}
	return "", fmt.Errorf("update guild config failed: %w", err)
}

func (h *FocusCommandHandler) handleReset(ctx context.Context, message mqmsg.InboundMessage, _ Command) (string, error) {
	result, err := h.stats.ResetGuild(ctx, message.ChatID)
	if err != nil {
		return "", fmt.Errorf("reset guild failed: %w", err)
	}
	h.logger.Warn("guild_stats_reset", "chat_id", message.ChatID, "user_id", message.UserID,
		"stats", result.StatsDeleted, "records", result.RecordsDeleted)
	return h.msg(messages.ResetDone,
		messageprovider.P("stats", result.StatsDeleted),
		messageprovider.P("records", result.RecordsDeleted),
	), nil
}
