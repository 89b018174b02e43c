// Package api provides the ChronoVerse REST and WebSocket API server.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/ChronoVerse/core/timeslot"
	"github.com/FocuswithJustin/ChronoVerse/internal/engine"
	"github.com/FocuswithJustin/ChronoVerse/internal/logging"
	"github.com/FocuswithJustin/ChronoVerse/internal/stats"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

// Version is the API version reported by the root and health endpoints.
const Version = "0.1.0"

// Config holds the server's settings and defaults for resolution
// parameters not supplied per request.
type Config struct {
	Port           int
	TimeFormat     timeslot.Format
	Translation    string
	Secondary      string
	AllowedOrigins []string
}

// Server serves the resolution engine over HTTP and WebSocket. All
// collaborators are injected; the server owns no global state.
type Server struct {
	cfg       Config
	engine    *engine.Engine
	store     *store.Store
	stats     *stats.Collector
	hub       *Hub
	upgrader  websocket.Upgrader
	startTime time.Time
}

// NewServer creates a Server and starts its WebSocket hub.
func NewServer(cfg Config, eng *engine.Engine, st *store.Store, collector *stats.Collector) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    eng,
		store:     st,
		stats:     collector,
		hub:       NewHub(),
		startTime: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	go s.hub.Run()
	return s
}

// Hub exposes the WebSocket hub so background pushers can broadcast.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/verse", s.handleVerse)
	mux.HandleFunc("/api/v1/lookup", s.handleLookup)
	mux.HandleFunc("/api/v1/translations", s.handleTranslations)
	mux.HandleFunc("/api/v1/completion", s.handleCompletion)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/ws", s.handleWebSocket)

	var handler http.Handler = securityHeaders(mux)
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	handler = logging.CombinedMiddleware(handler)
	return handler
}

// Start runs the server until the listener fails.
func (s *Server) Start() error {
	logging.ServerStartup("rest_api", "http", s.cfg.Port,
		"websocket_protocol", "ws",
		"translations", len(s.engine.Translations()))

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.Handler())
}

// checkOrigin validates WebSocket origins against the allow list. An
// empty list allows all origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
