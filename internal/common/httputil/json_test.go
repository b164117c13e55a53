package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Enabled bool `json:"enabled"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"enabled":true}`))
		var p payload
		if err := ReadJSON(req, &p, 1024); err != nil {
			t.Fatal(err)
		}
		if !p.Enabled {
			t.Error("expected enabled=true")
		}
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
		if err := ReadJSON(req, &payload{}, 1024); !errors.Is(err, ErrEmptyBody) {
			t.Errorf("expected ErrEmptyBody, got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"enabled":false}`))
		if err := ReadJSON(req, &payload{}, 4); !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("expected ErrBodyTooLarge, got %v", err)
		}
	})
}

func TestWriteErrorJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteErrorJSON(rec, http.StatusBadRequest, " bad_request ", "nope"); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get(HeaderContentType); ct != ContentTypeJSON {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"error":"bad_request"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
