package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/infrastructure/metrics"
	"github.com/taskboard/client/internal/ports"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) (*Client, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.New()
	client, err := New(Options{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Tokens:  tokens,
		Logger:  logger.NewNop(),
		Metrics: m,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client, m
}

func TestClient_SendsHeadersAndDecodes(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/taskCards/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected a request id")
		}

		var body ports.TaskcardRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CardTitle != "Todo" {
			t.Errorf("unexpected body %+v err=%v", body, err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(entities.Taskcard{ID: 3, CardTitle: "Todo", TaskboardID: 7})
	}, staticToken("tok"))

	card, err := client.CreateTaskcard(context.Background(), 7, ports.TaskcardRequest{CardTitle: "Todo"})
	if err != nil {
		t.Fatalf("CreateTaskcard failed: %v", err)
	}
	if card.ID != 3 || card.TaskboardID != 7 {
		t.Errorf("unexpected card %+v", card)
	}

	if got := testutil.CollectAndCount(m.RequestDuration); got != 1 {
		t.Errorf("expected one observed series, got %d", got)
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no authorization header, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}, staticToken(""))

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
}

func TestClient_EmptyBodyIsTolerated(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, nil)

	board, err := client.RenameTaskboard(context.Background(), 1, ports.RenameTaskboardRequest{TaskboardTitle: "x"})
	if err != nil {
		t.Fatalf("RenameTaskboard failed: %v", err)
	}
	if board.ID != 0 {
		t.Errorf("expected an empty board, got %+v", board)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		message  string
		conflict bool
	}{
		{"json message", http.StatusConflict, `{"message":"event overlaps"}`, "event overlaps", true},
		{"json error", http.StatusUnauthorized, `{"error":"invalid token"}`, "invalid token", false},
		{"plain text", http.StatusInternalServerError, "boom", "boom", false},
		{"empty", http.StatusNotFound, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			err := client.DeleteTask(context.Background(), 1)
			se, ok := ports.AsStatusError(err)
			if !ok {
				t.Fatalf("expected a StatusError, got %v", err)
			}
			if se.StatusCode != tt.status || se.Message != tt.message || se.IsConflict() != tt.conflict {
				t.Errorf("unexpected status error %+v", se)
			}
			if ports.IsNetworkError(err) {
				t.Error("a status error is not a network error")
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := New(Options{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = client.ListTaskboards(context.Background())
	if !ports.IsNetworkError(err) {
		t.Fatalf("expected a network error, got %v", err)
	}
	if _, ok := ports.AsStatusError(err); ok {
		t.Error("a transport failure is not a status error")
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, nil)
	client.limiter.SetLimit(0.001)
	client.limiter.SetBurst(1)

	ctx := context.Background()
	if _, err := client.ListTasks(ctx, 1); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := client.ListTasks(ctx, 1); !ports.IsNetworkError(err) {
		t.Errorf("expected the limiter wait to fail as a network error, got %v", err)
	}
}

func TestClient_OAuthProviderPath(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/github/auth" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ports.AuthResponse{User: entities.User{ID: 5}, AccessToken: "tok"})
	}, nil)

	resp, err := client.ExchangeOAuthCode(context.Background(), entities.OAuthGithub, ports.OAuthCodeRequest{Code: "abc"})
	if err != nil {
		t.Fatalf("ExchangeOAuthCode failed: %v", err)
	}
	if resp.AccessToken != "tok" || resp.User.ID != 5 {
		t.Errorf("unexpected response %+v", resp)
	}

	if _, err := client.ExchangeOAuthCode(context.Background(), "myspace", ports.OAuthCodeRequest{Code: "abc"}); !errors.Is(err, entities.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "/api"}); err == nil {
		t.Error("expected an error for a relative base url")
	}
}

func TestClient_LogsRejectionWithRequestID(t *testing.T) {
	var sent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"taskboard not found"}`))
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	client, err := New(Options{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Logger:  &logger.Logger{SugaredLogger: zap.New(core).Sugar()},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.ListTaskboards(context.Background()); err == nil {
		t.Fatal("expected a status error")
	}

	entries := logs.FilterMessage("API error response").All()
	if len(entries) != 1 {
		t.Fatalf("expected one error response entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != sent || sent == "" {
		t.Errorf("expected request_id %q, got %v", sent, fields["request_id"])
	}
	if fields["message"] != "taskboard not found" || fields["component"] != "rest" {
		t.Errorf("unexpected fields %v", fields)
	}
}
