// Package adapter maps the two upstream feeds into canonical schedule
// records. Each adapter owns its source's vocabulary and error wrapping;
// nothing downstream sees raw upstream shapes.
package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"campusbus/internal/domain"
	"campusbus/internal/timeutil"
	"campusbus/pkg/iettapi"
)

// plannedDepartureFetcher is the slice of the IETT client the adapter needs.
type plannedDepartureFetcher interface {
	PlannedDepartures(ctx context.Context, routeCode string) ([]iettapi.ScheduleRow, error)
}

// Fixed vocabulary of the authority feed. An unknown code is a mapping
// failure, never a silent default.
var (
	authorityDirections = map[string]domain.Direction{
		"G": domain.DirectionCampusToMetro, // gidiş (outbound)
		"D": domain.DirectionMetroToCampus, // dönüş (return)
	}
	authorityDayTypes = map[string]domain.DayType{
		"I": domain.DayTypeWeekday,
		"C": domain.DayTypeSaturday,
		"P": domain.DayTypeSunday,
	}
)

// Authority adapts the IETT planned-departure feed.
type Authority struct {
	client    plannedDepartureFetcher
	routeCode string
	marker    string
	logger    *slog.Logger
}

// NewAuthority builds an adapter bound to one route code. marker, when
// non-empty, restricts rows to that exact routing variant before mapping.
func NewAuthority(client plannedDepartureFetcher, routeCode, marker string, logger *slog.Logger) *Authority {
	return &Authority{
		client:    client,
		routeCode: routeCode,
		marker:    marker,
		logger:    logger.With("adapter", "authority"),
	}
}

// Schedules fetches and maps the configured route.
func (a *Authority) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	return a.SchedulesForRoute(ctx, a.routeCode, a.marker)
}

// SchedulesForRoute fetches and maps an arbitrary route code. A non-empty
// marker keeps only rows whose variant marker matches exactly; unmarked
// rows never match a marker filter.
func (a *Authority) SchedulesForRoute(ctx context.Context, routeCode, marker string) ([]domain.Schedule, error) {
	rows, err := a.client.PlannedDepartures(ctx, routeCode)
	if err != nil {
		return nil, fmt.Errorf("fetching route %q: %w: %w", routeCode, domain.ErrUpstreamUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("route %q: %w", routeCode, domain.ErrRouteNotFound)
	}

	if marker != "" {
		filtered := rows[:0:0]
		for _, r := range rows {
			if r.VariantMarker == marker {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	schedules := make([]domain.Schedule, 0, len(rows))
	for _, r := range rows {
		s, err := mapAuthorityRow(r)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", routeCode, err)
		}
		schedules = append(schedules, s)
	}

	a.logger.Debug("mapped authority schedules", "route", routeCode, "rows", len(rows), "marker", marker)
	return schedules, nil
}

func mapAuthorityRow(r iettapi.ScheduleRow) (domain.Schedule, error) {
	dir, ok := authorityDirections[r.DirectionCode]
	if !ok {
		return domain.Schedule{}, fmt.Errorf("%w: direction code %q", domain.ErrMapping, r.DirectionCode)
	}
	dayType, ok := authorityDayTypes[r.DayTypeCode]
	if !ok {
		return domain.Schedule{}, fmt.Errorf("%w: day-type code %q", domain.ErrMapping, r.DayTypeCode)
	}
	if _, err := timeutil.ToMinuteOfDay(r.DepartureTime); err != nil {
		return domain.Schedule{}, fmt.Errorf("%w: departure time %q", domain.ErrMapping, r.DepartureTime)
	}

	return domain.Schedule{
		Source:        domain.SourceAuthority,
		Time:          r.DepartureTime,
		IsWeekend:     dayType.IsWeekend(),
		Direction:     dir,
		DayType:       dayType,
		VariantMarker: r.VariantMarker,
	}, nil
}
