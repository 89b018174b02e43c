package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/core/timeslot"
	"github.com/FocuswithJustin/ChronoVerse/internal/engine"
	"github.com/FocuswithJustin/ChronoVerse/internal/source"
	"github.com/FocuswithJustin/ChronoVerse/internal/stats"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

type canned struct{}

func (canned) Name() string { return "canned" }

func (canned) Fetch(ctx context.Context, r ref.Reference, translation string) (source.Result, error) {
	return source.Result{
		Text:        "text of " + r.String(),
		Translation: translation,
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	structure := canon.NewStructure()
	st, err := store.NewStore(t.TempDir(), structure)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	exec := source.NewExecutor(st, time.Second)
	exec.SetDefaultChain([]source.Source{source.NewCache(st), canned{}})

	collector := stats.NewCollector()
	eng := engine.New(engine.Config{
		Structure:    structure,
		Executor:     exec,
		Stats:        collector,
		Translations: []string{"kjv", "web"},
	})

	return NewServer(Config{
		Port:        8345,
		TimeFormat:  timeslot.Format12,
		Translation: "kjv",
	}, eng, st, collector)
}

func get(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding %s response: %v", path, err)
	}
	return rec, resp
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(t)
	rec, resp := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, success = %v", rec.Code, resp.Success)
	}

	rec, resp = get(t, s.Handler(), "/nope")
	if rec.Code != http.StatusNotFound || resp.Error == nil {
		t.Errorf("unknown path: status = %d, error = %v", rec.Code, resp.Error)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec, resp := get(t, s.Handler(), "/health")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != "healthy" {
		t.Errorf("status = %v", data["status"])
	}
	if data["translations"].(float64) != 2 {
		t.Errorf("translations = %v", data["translations"])
	}
}

func TestHandleVerse(t *testing.T) {
	s := newTestServer(t)
	rec, resp := get(t, s.Handler(), "/api/v1/verse?format=12&translation=kjv")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, resp = %+v", rec.Code, resp)
	}
	data := resp.Data.(map[string]interface{})
	if data["resolution_id"] == "" {
		t.Error("missing resolution_id")
	}
}

func TestHandleVerse_BadFormat(t *testing.T) {
	s := newTestServer(t)
	rec, resp := get(t, s.Handler(), "/api/v1/verse?format=13")
	if rec.Code != http.StatusBadRequest || resp.Error == nil {
		t.Fatalf("status = %d, error = %v", rec.Code, resp.Error)
	}
	if resp.Error.Code != "INVALID_FORMAT" {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestHandleVerse_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verse", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleLookup(t *testing.T) {
	s := newTestServer(t)
	rec, resp := get(t, s.Handler(), "/api/v1/lookup?ref=John+3:16")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, resp = %+v", rec.Code, resp)
	}
	data := resp.Data.(map[string]interface{})
	if !strings.Contains(data["text"].(string), "John 3:16") {
		t.Errorf("text = %v", data["text"])
	}

	rec, resp = get(t, s.Handler(), "/api/v1/lookup?ref=Notabook+99")
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != "INVALID_REF" {
		t.Errorf("invalid ref: status = %d, error = %+v", rec.Code, resp.Error)
	}

	rec, _ = get(t, s.Handler(), "/api/v1/lookup")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing ref: status = %d", rec.Code)
	}
}

func TestHandleTranslations(t *testing.T) {
	s := newTestServer(t)
	_, resp := get(t, s.Handler(), "/api/v1/translations")
	list := resp.Data.([]interface{})
	if len(list) != 2 {
		t.Errorf("translations = %v", list)
	}
}

func TestHandleCompletion(t *testing.T) {
	s := newTestServer(t)

	// A fetch populates the kjv cache through write-through.
	get(t, s.Handler(), "/api/v1/lookup?ref=John+3:16&translation=kjv")

	_, resp := get(t, s.Handler(), "/api/v1/completion")
	list := resp.Data.([]interface{})
	if len(list) == 0 {
		t.Fatal("no completion entries")
	}
	var kjv map[string]interface{}
	for _, item := range list {
		m := item.(map[string]interface{})
		if m["translation"] == "kjv" {
			kjv = m
		}
	}
	if kjv == nil {
		t.Fatal("kjv entry missing")
	}
	if kjv["verses"].(float64) != 1 {
		t.Errorf("verses = %v", kjv["verses"])
	}
	if kjv["completion_pct"].(float64) <= 0 {
		t.Errorf("completion_pct = %v", kjv["completion_pct"])
	}
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)
	get(t, s.Handler(), "/api/v1/verse")

	_, resp := get(t, s.Handler(), "/api/v1/stats")
	data := resp.Data.(map[string]interface{})
	if data["resolutions"].(float64) < 1 {
		t.Errorf("resolutions = %v", data["resolutions"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	rec, _ := get(t, s.Handler(), "/health")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)
	rec, _ := get(t, s.Handler(), "/health")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q; want *", got)
	}

	restricted := NewServer(Config{
		TimeFormat:     timeslot.Format12,
		Translation:    "kjv",
		AllowedOrigins: []string{"https://app.example.com"},
	}, s.engine, s.store, s.stats)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	restricted.Handler().ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers set for disallowed origin")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w = httptest.NewRecorder()
	restricted.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The hub registers clients asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.hub.ClientCount() != 1 {
		t.Fatal("client never registered")
	}

	resp, err := http.Get(srv.URL + "/api/v1/verse")
	if err != nil {
		t.Fatalf("verse request: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ResolutionMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if msg.Type != "resolution" || msg.Outcome == nil {
		t.Errorf("msg = %+v", msg)
	}
	if msg.Timestamp == "" {
		t.Error("missing timestamp")
	}
}
