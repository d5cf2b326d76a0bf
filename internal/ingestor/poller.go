// Package ingestor refreshes the schedule snapshot on a fixed cadence.
// Upstream timetables change rarely, so the cadence is minutes, not
// seconds; a failed refresh keeps the previous good snapshot.
package ingestor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campusbus/internal/aggregator"
	"campusbus/internal/store"
)

type Poller struct {
	agg      *aggregator.Aggregator
	store    *store.Store
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	ready   bool
	readyMu sync.RWMutex
}

func New(agg *aggregator.Aggregator, st *store.Store, interval, timeout time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		agg:      agg,
		store:    st,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "poller"),
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	schedules, err := p.agg.Merged(fetchCtx, nil)
	if err != nil {
		p.logger.Error("schedule refresh failed", "error", err)
		return
	}

	p.store.Replace(schedules)

	if !p.IsReady() {
		p.setReady(true)
		p.logger.Info("poller ready", "schedules", len(schedules))
	}

	p.logger.Debug("schedule refresh completed",
		"schedules", len(schedules),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (p *Poller) IsReady() bool {
	p.readyMu.RLock()
	defer p.readyMu.RUnlock()
	return p.ready
}

func (p *Poller) setReady(ready bool) {
	p.readyMu.Lock()
	defer p.readyMu.Unlock()
	p.ready = ready
}
