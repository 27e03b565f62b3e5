package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
)

const defaultIntervalSec = 60

type createRequest struct {
	OwnerID  string `json:"owner_id"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Interval *int   `json:"interval"`
}

type monitorResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Interval    int    `json:"interval"`
	Status      string `json:"status"`
	LastChecked int64  `json:"last_checked"` // epoch seconds, 0 = never
	CreatedAt   int64  `json:"created_at"`
}

func toResponse(m *monitor.Monitor) monitorResponse {
	var lastChecked int64
	if !m.LastChecked.IsZero() {
		lastChecked = m.LastChecked.Unix()
	}
	return monitorResponse{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		URL:         m.URL,
		Interval:    int(m.Interval / time.Second),
		Status:      string(m.Status),
		LastChecked: lastChecked,
		CreatedAt:   m.CreatedAt.Unix(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database service not available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	req.URL = strings.TrimSpace(req.URL)
	req.Name = strings.TrimSpace(req.Name)
	if req.OwnerID == "" || req.URL == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "owner_id, url and name are required")
		return
	}
	intervalSec := defaultIntervalSec
	if req.Interval != nil {
		intervalSec = *req.Interval
	}
	if intervalSec < 1 {
		writeError(w, http.StatusBadRequest, "interval must be >= 1 second")
		return
	}

	m := &monitor.Monitor{
		ID:       uuid.NewString(),
		OwnerID:  req.OwnerID,
		Name:     req.Name,
		URL:      req.URL,
		Interval: time.Duration(intervalSec) * time.Second,
		Status:   monitor.StatusPending,
	}
	if err := s.repo.Create(r.Context(), m); err != nil {
		s.log.Error("create monitor", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to add monitor")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": m.ID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	ms, err := s.repo.ListByOwner(r.Context(), ownerID)
	if err != nil {
		s.log.Error("list monitors", zap.String("owner_id", ownerID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list monitors")
		return
	}
	out := make([]monitorResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := monitorID(w, r)
	if !ok {
		return
	}
	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	m, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		s.log.Error("get monitor", zap.String("monitor_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get monitor")
		return
	}
	if m.OwnerID != ownerID {
		// do not reveal other owners' monitors
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(m))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := monitorID(w, r)
	if !ok {
		return
	}
	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	if err := s.repo.Delete(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		s.log.Error("delete monitor", zap.String("monitor_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete monitor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// monitorID pulls the {id} path param and rejects anything that is not
// a UUID before it reaches the store. A malformed id can never name an
// existing monitor, so it reads as not found rather than a server error.
func monitorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "monitor not found")
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
