package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/dashboard"
)

// BreakerStater reports the insight backend circuit breaker state.
type BreakerStater interface {
	BreakerState() gobreaker.State
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	breaker   BreakerStater
	gate      dashboard.LocationGate
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, breaker BreakerStater, gate dashboard.LocationGate) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		breaker:   breaker,
		gate:      gate,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness plus the insight
// backend breaker state and the location outcome.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	details := map[string]interface{}{
		"version":   h.version,
		"buildTime": h.buildTime,
	}

	if h.breaker != nil {
		state := h.breaker.BreakerState()
		details["backendBreaker"] = state.String()
		if state == gobreaker.StateOpen {
			status = models.HealthStatusDegraded
		}
	}
	if h.gate != nil {
		details["location"] = string(h.gate.Status().Kind)
	}

	health := models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	}
	response.JSON(w, r, http.StatusOK, health)
}
