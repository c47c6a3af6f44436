package models

// ErrorMessageResponse is the body written for every failed request
type ErrorMessageResponse struct {
	Response string `json:"response"`
}

// HealthCheckResponse is the body returned by the health endpoints
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// ServiceHealthResponse is the static body returned by the per-area health checks
type ServiceHealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
