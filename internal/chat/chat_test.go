package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConf(t *testing.T, upstream http.HandlerFunc) *Conf {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_BASE_URL", server.URL)

	conf, err := NewConf()
	if err != nil {
		t.Fatalf("NewConf: %v", err)
	}
	return conf
}

func TestComplete(t *testing.T) {
	conf := testConf(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s, want /v1/messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %s, want test-key", got)
		}
		if got := r.Header.Get("anthropic-version"); got != apiVersion {
			t.Errorf("anthropic-version = %s, want %s", got, apiVersion)
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != model {
			t.Errorf("model = %s, want %s", req.Model, model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "where do I meet sellers?" {
			t.Errorf("unexpected messages payload: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "At the campus gates, usually."},
			},
		})
	})

	reply, err := conf.Complete(context.Background(), []Message{
		{Role: "user", Content: "where do I meet sellers?"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "At the campus gates, usually." {
		t.Errorf("reply = %q", reply)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	conf := testConf(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	if _, err := conf.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("Complete succeeded against a failing upstream")
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	conf := testConf(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	})

	if _, err := conf.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil {
		t.Error("Complete returned a reply from an empty response")
	}
}

func TestNewConfRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewConf(); err == nil {
		t.Error("NewConf succeeded without an api key")
	}
}
