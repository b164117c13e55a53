package mq

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/accesscontrol"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/cache"
	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
	commonmq "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mq"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/mqmsg"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/service"
)

// FocusMessageService: 인바운드 채팅 메시지를 명령으로 바꿔 실행하고 응답을 보낸다.
// 중복 수신 제거, 접근 제어, 관리자 확인을 여기서 처리한다.
type FocusMessageService struct {
	commandHandler *FocusCommandHandler
	commandParser  *CommandParser
	messageSender  *commonmq.MessageSender
	accessControl  *accesscontrol.AccessControl
	admin          config.AdminConfig
	stats          *service.StatsService
	seen           *cache.TTLLRUCache[struct{}]
	logger         *slog.Logger
}

// NewFocusMessageService 는 FocusMessageService 를 만든다. dedupTTL 이 0 이하이면 중복 제거를 끈다.
func NewFocusMessageService(
	commandHandler *FocusCommandHandler,
	commandParser *CommandParser,
	messageSender *commonmq.MessageSender,
	accessControl *accesscontrol.AccessControl,
	admin config.AdminConfig,
	stats *service.StatsService,
	dedupTTL time.Duration,
	dedupMaxEntries int,
	logger *slog.Logger,
) *FocusMessageService {
	return &FocusMessageService{
		commandHandler: commandHandler,
		commandParser:  commandParser,
		messageSender:  messageSender,
		accessControl:  accessControl,
		admin:          admin,
		stats:          stats,
		seen:           cache.NewTTLLRUCache[struct{}](dedupMaxEntries, dedupTTL),
		logger:         logger,
	}
}

// HandleMessage: InboundMessageHandler 구현
func (s *FocusMessageService) HandleMessage(ctx context.Context, message mqmsg.InboundMessage) {
	cmd := s.commandParser.Parse(message.Content)
	if cmd == nil {
		return
	}

	// 같은 전달 ID 의 재전송만 버린다. 사용자가 같은 명령을 다시 보낸 것은 새 전달이다.
	if key, ok := dedupKey(message); ok && s.seen.SeenOrMark(key, struct{}{}) {
		s.logger.Debug("message_duplicate_dropped", "chat_id", message.ChatID, "user_id", message.UserID, "delivery_id", message.DeliveryID)
		return
	}

	if !s.isAccessAllowed(ctx, message) {
		return
	}

	if cmd.RequiresAdmin() && !s.admin.IsAdmin(message.UserID) {
		s.logger.Warn("admin_command_rejected", "chat_id", message.ChatID, "user_id", message.UserID, "kind", cmd.Kind)
		s.sendError(ctx, message, &ferrors.NotAdminError{UserID: message.UserID})
		return
	}

	if message.Sender != nil {
		if err := s.stats.TouchProfile(ctx, message.ChatID, message.UserID, *message.Sender); err != nil {
			s.logger.Warn("profile_touch_failed", "chat_id", message.ChatID, "user_id", message.UserID, "err", err)
		}
	}

	text, err := s.commandHandler.ProcessCommand(ctx, message, *cmd)
	if err != nil {
		if ferrors.IsExpectedUserBehavior(err) {
			s.logger.Info("command_rejected", "chat_id", message.ChatID, "user_id", message.UserID, "kind", cmd.Kind, "err", err)
		} else {
			s.logger.Error("command_failed", "chat_id", message.ChatID, "user_id", message.UserID, "kind", cmd.Kind, "err", err)
		}
		s.sendError(ctx, message, err)
		return
	}

	if err := s.messageSender.SendFinal(ctx, message.ChatID, text, message.ThreadID); err != nil {
		s.logger.Error("reply_publish_failed", "chat_id", message.ChatID, "err", err)
	}
}

// isAccessAllowed: 차단된 사용자에게만 안내하고, 허용되지 않은 방은 조용히 무시한다.
func (s *FocusMessageService) isAccessAllowed(ctx context.Context, message mqmsg.InboundMessage) bool {
	err := s.accessControl.Check(message.UserID, message.ChatID)
	if err == nil {
		return true
	}

	var blocked cerrors.UserBlockedError
	if errors.As(err, &blocked) {
		s.logger.Warn("access_denied_user_blocked", "chat_id", message.ChatID, "user_id", message.UserID)
		s.sendError(ctx, message, err)
		return false
	}
	s.logger.Debug("access_denied", "chat_id", message.ChatID, "user_id", message.UserID, "err", err)
	return false
}

func (s *FocusMessageService) sendError(ctx context.Context, message mqmsg.InboundMessage, err error) {
	mapping := GetErrorMapping(err)
	if sendErr := s.messageSender.SendError(ctx, message.ChatID, message.ThreadID, mapping.Key, mapping.Params...); sendErr != nil {
		s.logger.Error("error_reply_publish_failed", "chat_id", message.ChatID, "err", sendErr)
	}
}

func dedupKey(message mqmsg.InboundMessage) (string, bool) {
	if message.DeliveryID == "" {
		return "", false
	}
	return message.ChatID + "\x00" + message.DeliveryID, true
}

// NewStreamMessageHandler: 스트림 엔트리를 FocusMessageService 로 넘기는 어댑터
func NewStreamMessageHandler(svc *FocusMessageService, logger *slog.Logger) *commonmq.StreamMessageHandler {
	return commonmq.NewStreamMessageHandler(svc, logger)
}
