package hub

import (
	"context"
	"log/slog"
	"time"

	"campusbus/internal/resolver"
	"campusbus/internal/store"
)

// Announcer recomputes the next departure for every direction on a fixed
// cadence and pushes the result through the hub. Each tick reads the
// current snapshot, so a refresh landing mid-cycle is picked up on the
// next tick without any state carried over.
type Announcer struct {
	hub      *Hub
	store    *store.Store
	interval time.Duration
	logger   *slog.Logger
}

func NewAnnouncer(h *Hub, st *store.Store, interval time.Duration, logger *slog.Logger) *Announcer {
	return &Announcer{
		hub:      h,
		store:    st,
		interval: interval,
		logger:   logger.With("component", "announcer"),
	}
}

func (a *Announcer) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *Announcer) tick() {
	if a.hub.ClientCount() == 0 {
		return
	}

	updates := resolver.NextAll(a.store.Snapshot(), time.Now())
	a.hub.Broadcast(updates)
	a.logger.Debug("announced next departures", "directions", len(updates))
}
