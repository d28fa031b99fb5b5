package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/murmur/internal/store"
)

// PresetHandler handles HTTP requests for formation tuning presets.
type PresetHandler struct {
	store *store.Store
}

// NewPresetHandler creates a new PresetHandler with the given store.
func NewPresetHandler(s *store.Store) *PresetHandler {
	return &PresetHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/presets or /api/presets/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			if name := r.URL.Query().Get("name"); name != "" {
				h.getByName(w, r, name)
				return
			}
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createPresetRequest struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

type listPresetsResponse struct {
	Presets []*store.Preset `json:"presets"`
}

// list handles GET /api/presets and returns all presets.
func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	if presets == nil {
		presets = []*store.Preset{}
	}
	writeJSON(w, http.StatusOK, listPresetsResponse{Presets: presets})
}

// get handles GET /api/presets/{id} and returns a single preset.
func (h *PresetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, preset)
}

// getByName handles GET /api/presets?name={name}.
func (h *PresetHandler) getByName(w http.ResponseWriter, r *http.Request, name string) {
	preset, err := h.store.Presets().GetByName(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, preset)
}

// create handles POST /api/presets and creates a new preset.
func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	preset := &store.Preset{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Config: req.Config,
	}

	if err := h.store.Presets().Create(preset); err != nil {
		writeError(w, http.StatusConflict, "Failed to create preset")
		return
	}

	writeJSON(w, http.StatusCreated, preset)
}

// delete handles DELETE /api/presets/{id} and removes a preset.
func (h *PresetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Presets().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
