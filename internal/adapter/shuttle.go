package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"campusbus/internal/domain"
	"campusbus/internal/timeutil"
	"campusbus/pkg/shuttleapi"
)

// Bucket labels the shuttle service uses for its two-way day split.
const (
	bucketLabelWeekday = "HAFTA İÇİ"
	bucketLabelWeekend = "HAFTA SONU"
)

// shuttleFetcher is the slice of the shuttle client the adapter needs.
type shuttleFetcher interface {
	Schedules(ctx context.Context, directionID int) (*shuttleapi.Response, error)
}

var shuttleDirectionIDs = map[domain.Direction]int{
	domain.DirectionCampusToMetro: shuttleapi.DirectionIDCampusToMetro,
	domain.DirectionMetroToCampus: shuttleapi.DirectionIDMetroToCampus,
}

// Shuttle adapts the university shuttle feed.
type Shuttle struct {
	client shuttleFetcher
	logger *slog.Logger
}

func NewShuttle(client shuttleFetcher, logger *slog.Logger) *Shuttle {
	return &Shuttle{
		client: client,
		logger: logger.With("adapter", "shuttle"),
	}
}

// Schedules fetches both direction resources concurrently and maps every
// recognized bucket. A direction missing one of the expected bucket labels
// simply contributes no records for that bucket; the shuttle system is
// allowed to omit weekend service entirely.
func (s *Shuttle) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	var mu sync.Mutex
	results := make(map[domain.Direction]*shuttleapi.Response, len(shuttleDirectionIDs))

	g, gctx := errgroup.WithContext(ctx)
	for dir, id := range shuttleDirectionIDs {
		g.Go(func() error {
			resp, err := s.client.Schedules(gctx, id)
			if err != nil {
				return fmt.Errorf("fetching shuttle direction %s: %w: %w", dir, domain.ErrUpstreamUnavailable, err)
			}
			mu.Lock()
			results[dir] = resp
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var schedules []domain.Schedule
	for _, dir := range domain.Directions {
		mapped, err := mapShuttleResponse(results[dir], dir)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, mapped...)
	}

	s.logger.Debug("mapped shuttle schedules", "count", len(schedules))
	return schedules, nil
}

func mapShuttleResponse(resp *shuttleapi.Response, dir domain.Direction) ([]domain.Schedule, error) {
	if resp == nil {
		return nil, nil
	}

	var schedules []domain.Schedule
	for _, group := range resp.Data {
		for _, bucket := range group.Data {
			var weekend bool
			switch bucket.TitleTR {
			case bucketLabelWeekday:
				weekend = false
			case bucketLabelWeekend:
				weekend = true
			default:
				// Unrecognized buckets are extra upstream content,
				// not part of the weekday/weekend timetable.
				continue
			}

			for _, t := range bucket.Data {
				if _, err := timeutil.ToMinuteOfDay(t); err != nil {
					return nil, fmt.Errorf("shuttle direction %s: %w: departure time %q", dir, domain.ErrMapping, t)
				}
				schedules = append(schedules, domain.Schedule{
					Source:    domain.SourceShuttle,
					Time:      t,
					IsWeekend: weekend,
					Direction: dir,
				})
			}
		}
	}
	return schedules, nil
}
