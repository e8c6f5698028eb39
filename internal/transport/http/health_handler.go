package http

import (
	"context"
	"net/http"
	"time"

	"github.com/IgorGrieder/slugs/internal/constants"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/IgorGrieder/slugs/pkg/httputils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck pings one dependency.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
	// Optional checks report "degraded" without failing the endpoint.
	Optional bool
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status" example:"ok"`
	Timestamp string            `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health and metrics endpoints
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

func NewHealthHandler(timeout time.Duration, checks ...HealthCheck) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{checks: checks, timeout: timeout}
}

// Health returns the health status of the service
// @Summary      Health check
// @Description  Pings the record store and the rate limit store
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}
	status := constants.SuccessHealthy.Status

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.String("dependency", check.Name), zap.Error(err))
			if check.Optional {
				resp.Checks[check.Name] = "degraded"
				if resp.Status == "ok" {
					resp.Status = "degraded"
				}
				continue
			}
			resp.Checks[check.Name] = "down"
			resp.Status = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	httputils.WriteJSON(w, status, resp)
}

// Metrics returns Prometheus metrics
func (h *HealthHandler) Metrics() http.Handler {
	return promhttp.Handler()
}
