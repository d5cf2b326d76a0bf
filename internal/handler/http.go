package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"campusbus/internal/aggregator"
	"campusbus/internal/cache"
	"campusbus/internal/domain"
	"campusbus/internal/resolver"
	"campusbus/internal/store"
	"campusbus/internal/timeutil"
)

// MergedProvider is the aggregation core's merged-feed operation.
type MergedProvider interface {
	Merged(ctx context.Context, filter *aggregator.Filter) ([]domain.Schedule, error)
}

// RouteProvider is the authority adapter's per-route operation, used by
// the variant view.
type RouteProvider interface {
	SchedulesForRoute(ctx context.Context, routeCode, marker string) ([]domain.Schedule, error)
}

type ScheduleHandler struct {
	merged        MergedProvider
	routes        RouteProvider
	store         *store.Store
	cache         *cache.RedisCache // nil when caching is disabled
	cacheTTL      time.Duration
	defaultMarker string
	logger        *slog.Logger
}

func NewScheduleHandler(merged MergedProvider, routes RouteProvider, st *store.Store, redisCache *cache.RedisCache, cacheTTL time.Duration, defaultMarker string, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		merged:        merged,
		routes:        routes,
		store:         st,
		cache:         redisCache,
		cacheTTL:      cacheTTL,
		defaultMarker: defaultMarker,
		logger:        logger.With("handler", "schedule"),
	}
}

type SchedulesResponse struct {
	Schedules  []domain.Schedule `json:"schedules"`
	Count      int               `json:"count"`
	ServerTime time.Time         `json:"serverTime"`
}

// ListSchedules serves the merged, sorted feed with optional filters.
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	key := cache.KeyMerged(filter)
	var schedules []domain.Schedule
	if h.cacheGet(r.Context(), key, &schedules) {
		ServerStats.IncCacheHits()
		respondJSON(w, http.StatusOK, SchedulesResponse{
			Schedules:  schedules,
			Count:      len(schedules),
			ServerTime: time.Now(),
		})
		return
	}
	ServerStats.IncCacheMisses()

	schedules, err := h.merged.Merged(r.Context(), filter)
	if err != nil {
		h.respondUpstreamError(w, err)
		return
	}
	h.cacheSet(r.Context(), key, schedules)

	h.logger.Debug("ListSchedules response",
		"count", len(schedules),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	respondJSON(w, http.StatusOK, SchedulesResponse{
		Schedules:  schedules,
		Count:      len(schedules),
		ServerTime: time.Now(),
	})
}

type NextResponse struct {
	Departures []resolver.NextDeparture `json:"departures"`
	DayType    domain.DayType           `json:"dayType"`
	ServerTime time.Time                `json:"serverTime"`
}

// NextDepartures resolves the next departure per direction against the
// current snapshot. An `at=HH:MM` override pins the clock and a
// `weekend=` override pins the day-type bucket for that request; the
// calendar day is always the real one.
func (h *ScheduleHandler) NextDepartures(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if at := r.URL.Query().Get("at"); at != "" {
		minute, err := timeutil.ToMinuteOfDay(at)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid at parameter: expected HH:MM")
			return
		}
		now = time.Date(now.Year(), now.Month(), now.Day(), minute/60, minute%60, 0, 0, now.Location())
	}

	dayType := resolver.TodayDayType(now)
	if weekendParam := r.URL.Query().Get("weekend"); weekendParam != "" {
		weekend, err := strconv.ParseBool(weekendParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid weekend parameter: must be a boolean")
			return
		}
		// The override names a bucket, not a date: the weekend bucket
		// resolves against the Saturday timetable unless today already is
		// a weekend day.
		if weekend != dayType.IsWeekend() {
			if weekend {
				dayType = domain.DayTypeSaturday
			} else {
				dayType = domain.DayTypeWeekday
			}
		}
	}

	schedules := h.store.Snapshot()

	var departures []resolver.NextDeparture
	if dirParam := r.URL.Query().Get("direction"); dirParam != "" {
		dir, ok := domain.ParseDirection(dirParam)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid direction parameter")
			return
		}
		departures = []resolver.NextDeparture{resolver.NextForDay(schedules, dir, now, dayType)}
	} else {
		all := resolver.NextAllForDay(schedules, now, dayType)
		for _, dir := range domain.Directions {
			departures = append(departures, all[dir])
		}
	}

	respondJSON(w, http.StatusOK, NextResponse{
		Departures: departures,
		DayType:    dayType,
		ServerTime: time.Now(),
	})
}

// RouteVariantSchedules serves the authority-only view of one route,
// restricted to a single routing variant. Rows without a marker are
// excluded, never wildcarded.
func (h *ScheduleHandler) RouteVariantSchedules(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing route code")
		return
	}

	marker := r.URL.Query().Get("marker")
	if marker == "" {
		marker = h.defaultMarker
	}

	key := cache.KeyRouteVariant(code, marker)
	var schedules []domain.Schedule
	if h.cacheGet(r.Context(), key, &schedules) {
		ServerStats.IncCacheHits()
	} else {
		ServerStats.IncCacheMisses()
		var err error
		schedules, err = h.routes.SchedulesForRoute(r.Context(), code, marker)
		if err != nil {
			h.respondUpstreamError(w, err)
			return
		}
		schedules = timeutil.SortByDeparture(schedules)
		h.cacheSet(r.Context(), key, schedules)
	}

	if dirParam := r.URL.Query().Get("direction"); dirParam != "" {
		dir, ok := domain.ParseDirection(dirParam)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid direction parameter")
			return
		}
		schedules = filterByDirection(schedules, dir)
	}

	if dayParam := r.URL.Query().Get("dayType"); dayParam != "" {
		dayType := domain.DayType(dayParam)
		switch dayType {
		case domain.DayTypeWeekday, domain.DayTypeSaturday, domain.DayTypeSunday:
			schedules = filterByDayType(schedules, dayType)
		default:
			respondError(w, http.StatusBadRequest, "invalid dayType parameter: expected weekday, saturday or sunday")
			return
		}
	}

	respondJSON(w, http.StatusOK, SchedulesResponse{
		Schedules:  schedules,
		Count:      len(schedules),
		ServerTime: time.Now(),
	})
}

func (h *ScheduleHandler) parseFilter(w http.ResponseWriter, r *http.Request) (*aggregator.Filter, bool) {
	var filter aggregator.Filter
	var set bool

	if dirParam := r.URL.Query().Get("direction"); dirParam != "" {
		dir, ok := domain.ParseDirection(dirParam)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid direction parameter: must be campus-to-metro or metro-to-campus")
			return nil, false
		}
		filter.Direction = &dir
		set = true
	}

	if weekendParam := r.URL.Query().Get("isWeekend"); weekendParam != "" {
		weekend, err := strconv.ParseBool(weekendParam)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid isWeekend parameter: must be a boolean")
			return nil, false
		}
		filter.IsWeekend = &weekend
		set = true
	}

	if markerParam := r.URL.Query().Get("marker"); markerParam != "" {
		filter.VariantMarker = &markerParam
		set = true
	}

	if !set {
		return nil, true
	}
	return &filter, true
}

func (h *ScheduleHandler) respondUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRouteNotFound):
		h.logger.Warn("route not found", "error", err)
		respondError(w, http.StatusNotFound, "route not found")
	case errors.Is(err, domain.ErrMapping):
		h.logger.Error("upstream data unusable", "error", err)
		respondError(w, http.StatusBadGateway, "upstream returned unusable schedule data")
	default:
		h.logger.Error("upstream fetch failed", "error", err)
		respondError(w, http.StatusBadGateway, "failed to fetch schedules")
	}
}

func (h *ScheduleHandler) cacheGet(ctx context.Context, key string, dest *[]domain.Schedule) bool {
	if h.cache == nil {
		return false
	}
	found, err := h.cache.GetJSON(ctx, key, dest)
	return err == nil && found
}

func (h *ScheduleHandler) cacheSet(ctx context.Context, key string, schedules []domain.Schedule) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetJSON(ctx, key, schedules, h.cacheTTL); err != nil {
		h.logger.Debug("failed to cache schedules", "key", key, "error", err)
	}
}

func filterByDirection(schedules []domain.Schedule, dir domain.Direction) []domain.Schedule {
	out := schedules[:0:0]
	for _, s := range schedules {
		if s.Direction == dir {
			out = append(out, s)
		}
	}
	return out
}

func filterByDayType(schedules []domain.Schedule, dayType domain.DayType) []domain.Schedule {
	out := schedules[:0:0]
	for _, s := range schedules {
		if s.DayType == dayType {
			out = append(out, s)
		}
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
