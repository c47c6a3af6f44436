package handlers

import (
	"net/http"
	"sort"

	"github.com/linesmerrill/victim-dao-api/api"
)

// Metrics exists for the admin request metrics dashboard
type Metrics struct {
	Collector *api.MetricsCollector
}

// formatRouteMetrics converts duration fields to milliseconds for JSON serialization
func formatRouteMetrics(routes []api.RouteMetrics) []map[string]interface{} {
	result := make([]map[string]interface{}, len(routes))
	for i, route := range routes {
		result[i] = map[string]interface{}{
			"method":      route.Method,
			"path":        route.Path,
			"count":       route.Count,
			"errorCount":  route.ErrorCount,
			"avgTime":     route.AvgTime.Milliseconds(),
			"minTime":     route.MinTime.Milliseconds(),
			"maxTime":     route.MaxTime.Milliseconds(),
			"lastRequest": route.LastRequest,
		}
	}
	return result
}

// MetricsHandler returns the summary, every route and the slowest routes by average time
func (m Metrics) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 0)

	routes := m.Collector.GetRouteMetrics()
	slowest := make([]api.RouteMetrics, len(routes))
	copy(slowest, routes)
	sort.SliceStable(slowest, func(i, j int) bool {
		return slowest[i].AvgTime > slowest[j].AvgTime
	})
	if len(slowest) > limit {
		slowest = slowest[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary": m.Collector.GetSummary(),
		"routes": map[string]interface{}{
			"all":        formatRouteMetrics(routes),
			"slowest":    formatRouteMetrics(slowest),
			"totalCount": len(routes),
		},
	})
}
