package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchvol/internal/session"
)

// SessionHandler exposes the session snapshot and the start/pause controls.
type SessionHandler struct {
	session *session.State
}

// NewSessionHandler creates a SessionHandler for s.
func NewSessionHandler(s *session.State) *SessionHandler {
	return &SessionHandler{session: s}
}

// Data handles GET /get_data and returns the latest snapshot.
func (h *SessionHandler) Data(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// Start handles POST /start.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.session.Start()
	log.Info("Gesture control started")
	writeJSON(w, http.StatusOK, statusResponse{Status: "started"})
}

// Pause handles POST /pause.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.session.Pause()
	log.Info("Gesture control paused")
	writeJSON(w, http.StatusOK, statusResponse{Status: "paused"})
}
