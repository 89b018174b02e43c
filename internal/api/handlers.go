package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/core/timeslot"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Translations int    `json:"translations"`
	Clients      int    `json:"clients"`
}

// CompletionInfo reports one translation cache's fill state.
type CompletionInfo struct {
	Translation string  `json:"translation"`
	Verses      int     `json:"verses"`
	Completion  float64 `json:"completion_pct"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "ChronoVerse API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"GET /api/v1/verse",
			"GET /api/v1/lookup",
			"GET /api/v1/translations",
			"GET /api/v1/completion",
			"GET /api/v1/stats",
			"WS /api/v1/ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:       "healthy",
		Version:      Version,
		Uptime:       time.Since(s.startTime).String(),
		Translations: len(s.engine.Translations()),
		Clients:      s.hub.ClientCount(),
	})
}

// handleVerse resolves the verse for the current moment. Optional query
// parameters: format (12 or 24), translation, secondary.
func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	format := s.cfg.TimeFormat
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := timeslot.ParseFormat(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
			return
		}
		format = f
	}

	translation := r.URL.Query().Get("translation")
	if translation == "" {
		translation = s.cfg.Translation
	}
	secondary := r.URL.Query().Get("secondary")
	if secondary == "" {
		secondary = s.cfg.Secondary
	}

	out := s.engine.Current(r.Context(), time.Now(), format, translation, secondary)
	s.hub.BroadcastResolution(out)
	respond(w, http.StatusOK, out)
}

// handleLookup fetches an explicit reference, e.g. ?ref=John+3:16.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	raw := r.URL.Query().Get("ref")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "MISSING_REF", "ref query parameter is required")
		return
	}
	parsed, err := ref.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REF", err.Error())
		return
	}

	translation := r.URL.Query().Get("translation")
	if translation == "" {
		translation = s.cfg.Translation
	}

	rec := s.engine.Lookup(r.Context(), parsed, translation)
	respond(w, http.StatusOK, rec)
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, s.engine.Translations())
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	var infos []CompletionInfo
	for _, code := range s.engine.Translations() {
		cache, err := s.store.Open(code)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
			return
		}
		infos = append(infos, CompletionInfo{
			Translation: code,
			Verses:      cache.Len(),
			Completion:  cache.Completion(),
		})
	}
	respond(w, http.StatusOK, infos)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, s.stats.Snapshot())
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
