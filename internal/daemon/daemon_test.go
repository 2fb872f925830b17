package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orchestrated-app/hub/internal/api"
	"github.com/orchestrated-app/hub/internal/bus"
	"github.com/orchestrated-app/hub/internal/config"
	"github.com/orchestrated-app/hub/internal/gateway"
	"github.com/orchestrated-app/hub/internal/lock"
	"github.com/orchestrated-app/hub/internal/status"
	"github.com/orchestrated-app/hub/internal/store"
	"github.com/orchestrated-app/hub/internal/suggest"
	hubsync "github.com/orchestrated-app/hub/internal/sync"
	"go.uber.org/zap"
)

type cannedGenerator struct{}

func (cannedGenerator) Generate(context.Context, string) (string, error) {
	return `[{"tone":"Professional","text":"Certainly."}]`, nil
}

// fakeRemote serves the aggregation gateway's REST surface with canned data.
func fakeRemote(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /chats", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[
			{"id":"chat-1","account_type":"LINKEDIN","name":"Sarah Jenkins","unread_count":2,
			 "last_message":{"text":"Did you see the new design specs?"},"timestamp":"2026-09-01T10:42:00Z"}
		]}`))
	})
	mux.HandleFunc("GET /chats/{id}/messages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[
			{"id":"m2","sender_type":"CONTACT","text":"Did you see the new design specs?","timestamp":"2026-09-01T10:42:00Z"},
			{"id":"m1","sender_type":"USER","text":"Sending them over now.","timestamp":"2026-09-01T10:41:00Z"}
		]}`))
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	mux.HandleFunc("POST /messages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"srv-1","sender_type":"USER","text":"ok"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestDaemonLifecycle wires the real components together the way the fx
// module does and exercises the HTTP API end to end against a fake remote
// gateway.
func TestDaemonLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tmpDir := t.TempDir()

	lk, err := lock.Acquire(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	db, err := store.Open(filepath.Join(tmpDir, "hub.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	remote := fakeRemote(t)

	logger := zap.NewNop()
	b := bus.New()
	machine := status.NewMachine(b)
	gw := gateway.NewClient(config.Gateway{BaseURL: remote.URL, APIKey: "test-key", TimeoutSeconds: 5}, logger)
	sugg := suggest.NewOrchestrator(cannedGenerator{}, b, logger)
	engine := hubsync.NewEngine(gw, db, sugg, b, machine, logger, time.Hour)

	router := gin.New()
	api.NewServer(db, engine, sugg, gw, machine, b, logger).RegisterRoutes(router)
	web := httptest.NewServer(router)
	defer web.Close()

	engine.Start(context.Background())
	defer engine.Stop()

	// The first refresh auto-selects the only conversation and loads its
	// messages; poll until the API reflects that.
	deadline := time.Now().Add(3 * time.Second)
	var msgs struct {
		Messages []struct {
			Sender  string `json:"sender"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	for {
		resp, err := http.Get(web.URL + "/api/v1/conversations/chat-1/messages")
		if err != nil {
			t.Fatal(err)
		}
		err = json.NewDecoder(resp.Body).Decode(&msgs)
		_ = resp.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs.Messages) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("messages never loaded, got %d", len(msgs.Messages))
		}
		time.Sleep(20 * time.Millisecond)
	}
	if msgs.Messages[0].Content != "Sending them over now." {
		t.Errorf("first message = %q, want the oldest one", msgs.Messages[0].Content)
	}

	resp, err := http.Get(web.URL + "/api/v1/conversations")
	if err != nil {
		t.Fatal(err)
	}
	var convs struct {
		Conversations []struct {
			ID       string `json:"id"`
			Platform string `json:"platform"`
			Selected bool   `json:"selected"`
		} `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&convs); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if len(convs.Conversations) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs.Conversations))
	}
	if convs.Conversations[0].Platform != "linkedin" || !convs.Conversations[0].Selected {
		t.Errorf("conversation = %+v, want selected linkedin chat", convs.Conversations[0])
	}

	// Send via the API and observe the optimistic echo.
	resp, err = http.Post(web.URL+"/api/v1/messages", "application/json",
		strings.NewReader(`{"conversation_id":"chat-1","text":"On my way"}`))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send status = %d, want 200", resp.StatusCode)
	}
	list, err := db.ListMessages("chat-1")
	if err != nil {
		t.Fatal(err)
	}
	last := list[len(list)-1]
	if last.Body != "On my way" || last.Sender != store.SenderSelf || last.SentAt != "Just now" {
		t.Errorf("echo = %+v", last)
	}
}

// TestServerStartStop verifies the HTTP server shuts down cleanly.
func TestServerStartStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.ListenAddr = "127.0.0.1:0"

	p := Params{Profile: "test", Config: cfg}
	b := bus.New()
	machine := status.NewMachine(b)
	logger := zap.NewNop()

	db, err := store.Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	gw := gateway.NewClient(config.Gateway{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1}, logger)
	sugg := suggest.NewOrchestrator(cannedGenerator{}, b, logger)
	engine := hubsync.NewEngine(gw, db, sugg, b, machine, logger, time.Hour)

	srv := NewServer(p, logger, api.NewServer(db, engine, sugg, gw, machine, b, logger))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Stop(ctx)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v after shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
