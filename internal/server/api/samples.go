package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/murmur/internal/store"
)

// SamplesHandler handles HTTP requests for session sample resources.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/sessions/{id}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "samples" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	sessionID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, sessionID)
	case http.MethodPost:
		h.create(w, r, sessionID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createSamplesRequest struct {
	Samples []store.SessionSample `json:"samples"`
}

type listSamplesResponse struct {
	Samples []store.SessionSample `json:"samples"`
}

// list handles GET /api/sessions/{id}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, sessionID string) {
	// Verify session exists so a bad ID is a 404, not an empty list
	if _, err := h.store.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify session")
		return
	}

	samples, err := h.store.Sessions().GetSamples(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	if samples == nil {
		samples = []store.SessionSample{}
	}
	writeJSON(w, http.StatusOK, listSamplesResponse{Samples: samples})
}

// create handles POST /api/sessions/{id}/samples
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, sessionID string) {
	if _, err := h.store.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify session")
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}

	if err := h.store.Sessions().AppendSamples(sessionID, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}
