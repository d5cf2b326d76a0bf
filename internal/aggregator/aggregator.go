// Package aggregator merges the two upstream schedule feeds into one
// rollover-aware, time-ordered sequence.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"campusbus/internal/domain"
	"campusbus/internal/timeutil"
)

// Source is one adapter's view: a fresh canonical sequence per call.
type Source interface {
	Schedules(ctx context.Context) ([]domain.Schedule, error)
}

// Filter restricts the merged sequence. Nil fields match everything.
// Predicates apply in declaration order: direction, weekend bucket, marker.
type Filter struct {
	Direction     *domain.Direction
	IsWeekend     *bool
	VariantMarker *string
}

type Aggregator struct {
	authority Source
	shuttle   Source
	logger    *slog.Logger
}

func New(authority, shuttle Source, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		authority: authority,
		shuttle:   shuttle,
		logger:    logger.With("component", "aggregator"),
	}
}

// Merged fetches both sources concurrently, fails fast if either fails (a
// silently half-empty departure board is worse than a visible error),
// applies the optional filter and sorts the result.
func (a *Aggregator) Merged(ctx context.Context, filter *Filter) ([]domain.Schedule, error) {
	start := time.Now()

	var mu sync.Mutex
	var authority, shuttle []domain.Schedule

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := a.authority.Schedules(gctx)
		if err != nil {
			return err
		}
		mu.Lock()
		authority = result
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		result, err := a.shuttle.Schedules(gctx)
		if err != nil {
			return err
		}
		mu.Lock()
		shuttle = result
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]domain.Schedule, 0, len(authority)+len(shuttle))
	merged = append(merged, authority...)
	merged = append(merged, shuttle...)
	merged = applyFilter(merged, filter)
	merged = timeutil.SortByDeparture(merged)

	a.logger.Debug("merged schedules",
		"authority", len(authority),
		"shuttle", len(shuttle),
		"returned", len(merged),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return merged, nil
}

func applyFilter(schedules []domain.Schedule, filter *Filter) []domain.Schedule {
	if filter == nil {
		return schedules
	}

	out := schedules[:0:0]
	for _, s := range schedules {
		if filter.Direction != nil && s.Direction != *filter.Direction {
			continue
		}
		if filter.IsWeekend != nil && s.IsWeekend != *filter.IsWeekend {
			continue
		}
		// Exact match; records without a marker never match a marker filter.
		if filter.VariantMarker != nil && s.VariantMarker != *filter.VariantMarker {
			continue
		}
		out = append(out, s)
	}
	return out
}
