package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolutionIDContext(t *testing.T) {
	ctx := context.Background()
	if got := GetResolutionID(ctx); got != "" {
		t.Errorf("GetResolutionID on empty context = %q", got)
	}

	ctx = WithResolutionID(ctx, "abc-123")
	if got := GetResolutionID(ctx); got != "abc-123" {
		t.Errorf("GetResolutionID = %q", got)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID = %q", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithResolutionID(context.Background(), "abc")
	if LoggerFromContext(ctx) == nil {
		t.Fatal("LoggerFromContext returned nil")
	}
	if LoggerFromContext(context.Background()) == nil {
		t.Fatal("LoggerFromContext without IDs returned nil")
	}
}

func TestInitLogger_AllLevels(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		for _, format := range []Format{FormatJSON, FormatText} {
			InitLogger(level, format)
			if GetLogger() == nil {
				t.Fatalf("GetLogger nil for level %v format %v", level, format)
			}
		}
	}
	InitLogger(LevelInfo, FormatJSON)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" {
		t.Error("request ID missing from context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("header = %q, context = %q", rec.Header().Get("X-Request-ID"), seen)
	}

	// A caller-supplied ID is kept.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "caller-id" {
		t.Errorf("request ID = %q; want caller-id", seen)
	}
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	handler := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
