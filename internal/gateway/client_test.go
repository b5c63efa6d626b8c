package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oncoref/oncoref/internal/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, log.NewNop())
}

func TestClient_Assess(t *testing.T) {
	conf := 0.82
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assess" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}

		var req assessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.PatientID != "PT-110" || req.TopK != 5 {
			t.Errorf("unexpected request body: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(AssessResult{
			PatientID:  "PT-110",
			Assessment: "Urgent",
			Reasoning:  "NG12 1.6.2 applies.",
			Confidence: &conf,
			Citations:  []Citation{{Page: 12, Chunk: "c1"}},
		})
	})

	res, err := c.Assess(context.Background(), "PT-110", 5)
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if res.Assessment != "Urgent" {
		t.Errorf("unexpected assessment: %q", res.Assessment)
	}
	if res.Confidence == nil || *res.Confidence != 0.82 {
		t.Errorf("unexpected confidence: %v", res.Confidence)
	}
	if len(res.Citations) != 1 || res.Citations[0].Chunk != "c1" {
		t.Errorf("unexpected citations: %+v", res.Citations)
	}
}

func TestClient_SendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.SessionID != "e2e-1" || req.Message != "What are the criteria?" || req.TopK != 5 {
			t.Errorf("unexpected request body: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(ChatReply{
			SessionID: "e2e-1",
			Answer:    "See criteria X",
			Citations: []Citation{{Page: 12, Chunk: "c1"}},
		})
	})

	reply, err := c.SendMessage(context.Background(), "e2e-1", "What are the criteria?", 5)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Answer != "See criteria X" {
		t.Errorf("unexpected answer: %q", reply.Answer)
	}
	if len(reply.Citations) != 1 || reply.Citations[0].Page != 12 {
		t.Errorf("unexpected citations: %+v", reply.Citations)
	}
}

func TestClient_ErrorBodyVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("retrieval index unavailable"))
	})

	_, err := c.SendMessage(context.Background(), "e2e-1", "q", 5)
	if err == nil {
		t.Fatal("expected error")
	}

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %T", err)
	}
	if remote.Status != http.StatusBadGateway {
		t.Errorf("unexpected status: %d", remote.Status)
	}
	if remote.Message != "retrieval index unavailable" {
		t.Errorf("expected server text verbatim, got %q", remote.Message)
	}
}

func TestClient_ErrorEmptyBodyUsesStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Assess(context.Background(), "PT-110", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "HTTP 500" {
		t.Errorf("expected status-derived message, got %q", err.Error())
	}
}

func TestClient_TransportErrorNormalized(t *testing.T) {
	// Nothing is listening here.
	c := New("http://127.0.0.1:1", log.NewNop())

	_, err := c.Assess(context.Background(), "PT-110", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("transport failures must surface as *RemoteError, got %T", err)
	}
	if remote.Status != 0 {
		t.Errorf("expected zero status for transport failure, got %d", remote.Status)
	}
}

func TestClient_History(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/chat/e2e-1/history" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(historyResponse{
			SessionID: "e2e-1",
			History: []Turn{
				{Role: RoleUser, Content: "q", Citations: []Citation{}},
				{Role: RoleAssistant, Content: "a", Citations: []Citation{{Page: 2, Chunk: "c3"}}},
			},
		})
	})

	turns, err := c.History(context.Background(), "e2e-1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[1].Citations[0].Chunk != "c3" {
		t.Errorf("unexpected citations: %+v", turns[1].Citations)
	}
}

func TestClient_HistoryUnknownSession(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty history", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(historyResponse{SessionID: "ghost"})
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "session not found", http.StatusNotFound)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			turns, err := c.History(context.Background(), "ghost")
			if err != nil {
				t.Fatalf("unknown session must not be an error, got: %v", err)
			}
			if len(turns) != 0 {
				t.Errorf("expected empty history, got %d turns", len(turns))
			}
		})
	}
}

func TestClient_HistoryEscapesSessionID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(historyResponse{})
	})

	if _, err := c.History(context.Background(), "a/b c"); err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if gotPath != "/chat/a%2Fb%20c/history" {
		t.Errorf("session ID not percent-encoded: %s", gotPath)
	}
}

func TestClient_Clear(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/chat/e2e-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(clearResponse{SessionID: "e2e-1", Cleared: true})
	})

	cleared, err := c.Clear(context.Background(), "e2e-1")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if !cleared {
		t.Error("expected cleared = true")
	}
}

func TestClient_ClearUnknownSessionIdempotent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not found", http.StatusNotFound)
	})

	cleared, err := c.Clear(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("clearing an unknown session must not fail, got: %v", err)
	}
	if !cleared {
		t.Error("expected cleared = true for unknown session")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8000/", log.NewNop())
	if c.baseURL != "http://localhost:8000" {
		t.Errorf("unexpected base URL: %q", c.baseURL)
	}
}
