package errors

import (
	"fmt"
	"testing"

	cerrors "github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/errors"
)

func TestIsExpectedUserBehavior(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("join: %w", &UnknownModeError{Mode: "C"}), true},
		{&NotAdminError{UserID: "u1"}, true},
		{cerrors.MalformedInputError{Message: "bad"}, true},
		{cerrors.DatabaseError{Operation: "insert"}, false},
		{&InvalidIntervalError{Start: 10, Now: 5}, false},
	}
	for _, tt := range tests {
		if got := IsExpectedUserBehavior(tt.err); got != tt.want {
			t.Errorf("IsExpectedUserBehavior(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
