// handlers_bindings.go - Value binding rule handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/label-designer/backend/internal/bindings"
)

// BindingsHandlerImpl implements the BindingsHandler interface
type BindingsHandlerImpl struct {
	store *bindings.Store
}

// NewBindingsHandler creates a new bindings handler instance
func NewBindingsHandler(store *bindings.Store) BindingsHandler {
	return &BindingsHandlerImpl{store: store}
}

// HandleGetBindings returns the active value binding rules
func (h *BindingsHandlerImpl) HandleGetBindings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Rules())
}

// HandleUpdateBindings replaces the active value binding rules
func (h *BindingsHandlerImpl) HandleUpdateBindings(c echo.Context) error {
	var rules bindings.Rules
	if err := c.Bind(&rules); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	for _, b := range rules.Bindings {
		if b.Pattern == "" {
			return NewValidationError("pattern")
		}
	}

	if err := h.store.Update(rules); err != nil {
		return NewInternalError("failed to update binding rules", err)
	}
	return c.JSON(http.StatusOK, h.store.Rules())
}
