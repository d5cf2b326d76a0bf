package cache

import (
	"fmt"

	"campusbus/internal/aggregator"
)

// KeyMergedAll caches the unfiltered merged feed.
const KeyMergedAll = "schedules:all"

// KeyMerged builds a cache key for a filtered merged-feed request. Each
// filter combination gets its own entry.
func KeyMerged(f *aggregator.Filter) string {
	if f == nil {
		return KeyMergedAll
	}
	dir, weekend, marker := "*", "*", "*"
	if f.Direction != nil {
		dir = string(*f.Direction)
	}
	if f.IsWeekend != nil {
		weekend = fmt.Sprintf("%t", *f.IsWeekend)
	}
	if f.VariantMarker != nil {
		marker = *f.VariantMarker
	}
	return fmt.Sprintf("schedules:%s:%s:%s", dir, weekend, marker)
}

// KeyRouteVariant caches the authority-only variant view for a route.
func KeyRouteVariant(routeCode, marker string) string {
	return fmt.Sprintf("route:%s:variant:%s", routeCode, marker)
}
