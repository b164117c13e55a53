package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/testhelper"
)

func TestRunTask(t *testing.T) {
	logger := testhelper.DiscardLogger()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		run     func(context.Context) error
		wantErr bool
	}{
		{"clean exit", context.Background(), func(context.Context) error { return nil }, false},
		{"stopped by cancel", canceled, func(ctx context.Context) error { return ctx.Err() }, false},
		{"failure", context.Background(), func(context.Context) error { return errors.New("boom") }, true},
		{"cancel error without shutdown", context.Background(), func(context.Context) error { return context.Canceled }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runTask(tt.ctx, logger, BackgroundTask{Name: "scanner", Run: tt.run})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
