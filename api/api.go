package api

import (
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/victim-dao-api/models"
)

// HealthCheckHandler reports that the process is up
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{Alive: true})
	w.Write(b)
}

// ServiceHealthHandler answers the static per-area health checks
func ServiceHealthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, _ := json.Marshal(models.ServiceHealthResponse{Status: "ok", Service: service})
		w.Write(b)
	}
}
