package api

import (
	"sort"
	"sync"
	"time"
)

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// Summary is the service wide rollup returned next to the per-route numbers
type Summary struct {
	TotalRequests int64     `json:"totalRequests"`
	TotalErrors   int64     `json:"totalErrors"`
	ErrorRate     float64   `json:"errorRate"`
	RouteCount    int       `json:"routeCount"`
	Since         time.Time `json:"since"`
}

// MetricsCollector collects and aggregates request metrics
type MetricsCollector struct {
	mu            sync.RWMutex
	routeMetrics  map[string]*RouteMetrics
	since         time.Time
	totalRequests int64
	totalErrors   int64
}

// NewMetricsCollector returns an empty collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		routeMetrics: make(map[string]*RouteMetrics),
		since:        time.Now(),
	}
}

// Record adds one finished request. path should be the route template so
// requests for different ids land on the same row.
func (mc *MetricsCollector) Record(method, path string, status int, duration time.Duration, at time.Time) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	routeKey := method + " " + path
	metrics, exists := mc.routeMetrics[routeKey]
	if !exists {
		metrics = &RouteMetrics{
			Method:  method,
			Path:    path,
			MinTime: duration,
		}
		mc.routeMetrics[routeKey] = metrics
	}

	metrics.Count++
	metrics.TotalTime += duration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = at
	if duration < metrics.MinTime {
		metrics.MinTime = duration
	}
	if duration > metrics.MaxTime {
		metrics.MaxTime = duration
	}

	mc.totalRequests++
	if status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}
}

// GetRouteMetrics returns a copy of the per-route metrics sorted by count
func (mc *MetricsCollector) GetRouteMetrics() []RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	routes := make([]RouteMetrics, 0, len(mc.routeMetrics))
	for _, v := range mc.routeMetrics {
		routes = append(routes, *v)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Count == routes[j].Count {
			return routes[i].Method+routes[i].Path < routes[j].Method+routes[j].Path
		}
		return routes[i].Count > routes[j].Count
	})
	return routes
}

// GetSummary returns overall summary metrics
func (mc *MetricsCollector) GetSummary() Summary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}
	return Summary{
		TotalRequests: mc.totalRequests,
		TotalErrors:   mc.totalErrors,
		ErrorRate:     errorRate,
		RouteCount:    len(mc.routeMetrics),
		Since:         mc.since,
	}
}
