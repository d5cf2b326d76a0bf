package handler

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"campusbus/internal/hub"
	"campusbus/internal/store"
)

// Stats tracks server-wide counters.
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	wsConnections    atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	rateLimitBlocked atomic.Int64
}

var ServerStats = &Stats{
	startTime: time.Now(),
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncWSConnections()    { s.wsConnections.Add(1) }
func (s *Stats) DecWSConnections()    { s.wsConnections.Add(-1) }
func (s *Stats) IncCacheHits()        { s.cacheHits.Add(1) }
func (s *Stats) IncCacheMisses()      { s.cacheMisses.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }

type StatsHandler struct {
	store *store.Store
	hub   *hub.Hub
}

func NewStatsHandler(st *store.Store, h *hub.Hub) *StatsHandler {
	return &StatsHandler{store: st, hub: h}
}

type StatsResponse struct {
	UptimeSeconds    int64     `json:"uptimeSeconds"`
	Requests         int64     `json:"requests"`
	ScheduleCount    int       `json:"scheduleCount"`
	LastRefresh      time.Time `json:"lastRefresh"`
	WSClients        int       `json:"wsClients"`
	WSConnections    int64     `json:"wsConnectionsTotal"`
	CacheHits        int64     `json:"cacheHits"`
	CacheMisses      int64     `json:"cacheMisses"`
	RateLimitBlocked int64     `json:"rateLimitBlocked"`
	Goroutines       int       `json:"goroutines"`
	HeapAllocBytes   uint64    `json:"heapAllocBytes"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	respondJSON(w, http.StatusOK, StatsResponse{
		UptimeSeconds:    int64(time.Since(ServerStats.startTime).Seconds()),
		Requests:         ServerStats.requestCount.Load(),
		ScheduleCount:    h.store.Count(),
		LastRefresh:      h.store.UpdatedAt(),
		WSClients:        h.hub.ClientCount(),
		WSConnections:    ServerStats.wsConnections.Load(),
		CacheHits:        ServerStats.cacheHits.Load(),
		CacheMisses:      ServerStats.cacheMisses.Load(),
		RateLimitBlocked: ServerStats.rateLimitBlocked.Load(),
		Goroutines:       runtime.NumGoroutine(),
		HeapAllocBytes:   mem.HeapAlloc,
	})
}

// CountingMiddleware bumps the request counter for every call.
func CountingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServerStats.IncRequests()
		next.ServeHTTP(w, r)
	})
}
