// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/label-designer/backend/internal/session"
	"github.com/label-designer/backend/internal/store"
)

// HealthHandlerImpl implements the HealthHandler interface. Beyond a
// liveness flag it reports the registered printer count and the number of
// open designer sessions, and degrades the status when the printer
// registry cannot be reached.
type HealthHandlerImpl struct {
	version  string
	registry store.PrinterRegistry
	sessions *session.Manager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, registry store.PrinterRegistry, sessions *session.Manager) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		registry: registry,
		sessions: sessions,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"sessions": h.sessions.Len(),
	}

	if count, err := h.registry.CountPrinters(c.Request().Context()); err != nil {
		resp["status"] = "degraded"
		resp["registry"] = "unreachable"
	} else {
		resp["printers"] = count
	}

	return c.JSON(http.StatusOK, resp)
}
