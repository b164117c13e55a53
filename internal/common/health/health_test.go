package health

import (
	"context"
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		resp := Evaluate(context.Background(), nil)
		if resp.Status != StatusOK || resp.Components != nil {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("one failing component", func(t *testing.T) {
		resp := Evaluate(context.Background(), map[string]Check{
			"db":     func(context.Context) error { return nil },
			"valkey": func(context.Context) error { return errors.New("dial refused") },
		})
		if resp.Status != StatusDegraded {
			t.Fatalf("status = %q", resp.Status)
		}
		if resp.Components["db"] != StatusOK || resp.Components["valkey"] != "dial refused" {
			t.Fatalf("components = %v", resp.Components)
		}
	})
}
