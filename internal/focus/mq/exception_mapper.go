package mq

import (
	"errors"

	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/messageprovider"
	ferrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/errors"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/messages"
)

// ErrorMapping: 에러에 대응하는 응답 메시지 키와 파라미터
type ErrorMapping struct {
	Key    string
	Params []messageprovider.Param
}

// GetErrorMapping: 사용자에게 보여줄 메시지로 에러를 바꾼다. 저장소 에러 등은 generic.
func GetErrorMapping(err error) ErrorMapping {
	var (
		unknownMode   *ferrors.UnknownModeError
		invalidMetric *ferrors.InvalidMetricError
		notAdmin      *ferrors.NotAdminError
		accessDenied  cerrors.AccessDeniedError
		userBlocked   cerrors.UserBlockedError
		chatBlocked   cerrors.ChatBlockedError
		malformed     cerrors.MalformedInputError
	)

	switch {
	case errors.As(err, &unknownMode):
		return ErrorMapping{
			Key:    messages.ErrorUnknownMode,
			Params: []messageprovider.Param{messageprovider.P("mode", unknownMode.Mode)},
		}
	case errors.As(err, &invalidMetric):
		return ErrorMapping{
			Key:    messages.ErrorInvalidMetric,
			Params: []messageprovider.Param{messageprovider.P("metric", invalidMetric.Metric)},
		}
	case errors.As(err, &notAdmin):
		return ErrorMapping{Key: messages.ErrorNotAdmin}
	case errors.As(err, &userBlocked):
		return ErrorMapping{Key: messages.ErrorUserBlocked}
	case errors.As(err, &chatBlocked):
		return ErrorMapping{Key: messages.ErrorChatBlocked}
	case errors.As(err, &accessDenied):
		return ErrorMapping{Key: messages.ErrorAccessDenied}
	case errors.As(err, &malformed):
		return ErrorMapping{Key: messages.ErrorMalformed}
	default:
		return ErrorMapping{Key: messages.ErrorGeneric}
	}
}
