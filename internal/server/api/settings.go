package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchvol/internal/config"
	"github.com/ayusman/pinchvol/internal/store"
)

// SettingsHandler reads and persists gesture tuning. Changes are stored
// immediately and take effect the next time the pipeline is built.
type SettingsHandler struct {
	store *store.Store
	base  config.GestureConfig
}

// NewSettingsHandler creates a SettingsHandler layering stored overrides on base.
func NewSettingsHandler(s *store.Store, base config.GestureConfig) *SettingsHandler {
	return &SettingsHandler{store: s, base: base}
}

type settingsResponse struct {
	Settings        map[string]string `json:"settings"`
	RestartRequired bool              `json:"restart_required"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.reset(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Effective returns base with the stored overrides applied.
func (h *SettingsHandler) Effective() (config.GestureConfig, error) {
	stored, err := h.store.Settings().All()
	if err != nil {
		return h.base, err
	}
	return h.base.WithSettings(stored)
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	// Stored is true when the value is a persisted override.
	Stored bool `json:"stored"`
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	eff, err := h.Effective()
	if err != nil {
		log.WithError(err).Warn("Stored settings unusable, reporting defaults")
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusOK, settingsResponse{Settings: eff.Settings()})
		return
	}

	value, ok := eff.Settings()[key]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown setting %q", key))
		return
	}

	stored := true
	if _, err := h.store.Settings().Get(key); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "Failed to read setting")
			return
		}
		stored = false
	}
	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value, Stored: stored})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	updates := make(map[string]string, len(body))
	for k, v := range body {
		switch v.(type) {
		case string, bool, json.Number:
			updates[k] = fmt.Sprint(v)
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Setting %q must be a string, number or boolean", k))
			return
		}
	}

	current, err := h.Effective()
	if err != nil {
		current = h.base
	}
	next, err := current.WithSettings(updates)
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply settings")
		return
	}

	if err := h.store.Settings().SetMany(updates); err != nil {
		log.WithError(err).Error("Failed to persist settings")
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	log.WithField("settings", updates).Info("Settings updated")
	writeJSON(w, http.StatusOK, settingsResponse{Settings: next.Settings(), RestartRequired: true})
}

// reset removes one override with ?key=, or all of them.
func (h *SettingsHandler) reset(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		if err := h.store.Settings().Clear(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset settings")
			return
		}
		writeJSON(w, http.StatusOK, settingsResponse{Settings: h.base.Settings(), RestartRequired: true})
		return
	}

	if _, ok := h.base.Settings()[key]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown setting %q", key))
		return
	}
	if err := h.store.Settings().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Setting %q is not overridden", key))
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to reset setting")
		return
	}

	eff, err := h.Effective()
	if err != nil {
		eff = h.base
	}
	writeJSON(w, http.StatusOK, settingsResponse{Settings: eff.Settings(), RestartRequired: true})
}
