// handlers_settings.go - Saved variant operation handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/label-designer/backend/internal/store"
)

// SettingsHandlerImpl implements the SettingsHandler interface
type SettingsHandlerImpl struct {
	settings store.SettingsStore
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(settings store.SettingsStore) SettingsHandler {
	return &SettingsHandlerImpl{settings: settings}
}

// HandleListVariants returns the saved variant names for a device
func (h *SettingsHandlerImpl) HandleListVariants(c echo.Context) error {
	ip := c.Param("ip")
	variants, err := h.settings.ListSettings(c.Request().Context(), ip)
	if err != nil {
		return NewInternalError("failed to list variants", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ip":       ip,
		"variants": variants,
	})
}

// HandleDeleteVariant removes a saved variant. Deleting a variant that does
// not exist is idempotent.
func (h *SettingsHandlerImpl) HandleDeleteVariant(c echo.Context) error {
	ip := c.Param("ip")
	name := c.Param("name")
	if err := h.settings.DeleteSettings(c.Request().Context(), ip, name); err != nil {
		return NewInternalError("failed to delete variant", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": true,
		"ip":      ip,
		"name":    name,
	})
}
