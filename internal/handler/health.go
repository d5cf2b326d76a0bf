package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"campusbus/internal/ingestor"
	"campusbus/internal/store"
)

type HealthHandler struct {
	poller *ingestor.Poller
	store  *store.Store
}

func NewHealthHandler(p *ingestor.Poller, s *store.Store) *HealthHandler {
	return &HealthHandler{
		poller: p,
		store:  s,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready         bool      `json:"ready"`
	ScheduleCount int       `json:"scheduleCount"`
	LastRefresh   time.Time `json:"lastRefresh"`
	ServerTime    time.Time `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.poller.IsReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ReadyResponse{
		Ready:         ready,
		ScheduleCount: h.store.Count(),
		LastRefresh:   h.store.UpdatedAt(),
		ServerTime:    time.Now(),
	})
}
