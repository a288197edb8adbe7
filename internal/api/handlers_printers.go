// handlers_printers.go - Printer registry operation handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/store"
)

// PrinterHandlerImpl implements the PrinterHandler interface
type PrinterHandlerImpl struct {
	registry store.PrinterRegistry
}

// NewPrinterHandler creates a new printer handler instance
func NewPrinterHandler(registry store.PrinterRegistry) PrinterHandler {
	return &PrinterHandlerImpl{registry: registry}
}

// HandleListPrinters returns all registered printers
func (h *PrinterHandlerImpl) HandleListPrinters(c echo.Context) error {
	printers, err := h.registry.ListPrinters(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list printers", err)
	}
	return c.JSON(http.StatusOK, printers)
}

// HandleGetPrinter returns one printer by IP
func (h *PrinterHandlerImpl) HandleGetPrinter(c echo.Context) error {
	ip := c.Param("ip")
	printer, found, err := h.registry.GetPrinter(c.Request().Context(), ip)
	if err != nil {
		return NewInternalError("failed to load printer", err)
	}
	if !found {
		return NewNotFoundError("printer", ip)
	}
	return c.JSON(http.StatusOK, printer)
}

// HandleCreatePrinter registers a new printer
func (h *PrinterHandlerImpl) HandleCreatePrinter(c echo.Context) error {
	var req printerRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(true); err != nil {
		return err
	}

	err := h.registry.CreatePrinter(c.Request().Context(), req.toModel(req.IP))
	if errors.Is(err, store.ErrExists) {
		return NewConflictError("printer already registered: " + req.IP)
	}
	if err != nil {
		return NewInternalError("failed to create printer", err)
	}

	printer, _, err := h.registry.GetPrinter(c.Request().Context(), req.IP)
	if err != nil {
		return NewInternalError("failed to load created printer", err)
	}
	return c.JSON(http.StatusCreated, printer)
}

// HandleUpdatePrinter updates an existing printer's settings
func (h *PrinterHandlerImpl) HandleUpdatePrinter(c echo.Context) error {
	ip := c.Param("ip")

	var req printerRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(false); err != nil {
		return err
	}

	updated, err := h.registry.UpdatePrinter(c.Request().Context(), ip, req.toModel(ip))
	if err != nil {
		return NewInternalError("failed to update printer", err)
	}
	if !updated {
		return NewNotFoundError("printer", ip)
	}

	printer, _, err := h.registry.GetPrinter(c.Request().Context(), ip)
	if err != nil {
		return NewInternalError("failed to load updated printer", err)
	}
	return c.JSON(http.StatusOK, printer)
}

// HandleDeletePrinter removes a printer from the registry
func (h *PrinterHandlerImpl) HandleDeletePrinter(c echo.Context) error {
	ip := c.Param("ip")
	deleted, err := h.registry.DeletePrinter(c.Request().Context(), ip)
	if err != nil {
		return NewInternalError("failed to delete printer", err)
	}
	if !deleted {
		return NewNotFoundError("printer", ip)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": true,
		"ip":      ip,
	})
}

// HandleCountPrinters returns the number of registered printers
func (h *PrinterHandlerImpl) HandleCountPrinters(c echo.Context) error {
	count, err := h.registry.CountPrinters(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to count printers", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count": count,
	})
}

// Request types

type printerRequest struct {
	IP       string  `json:"ip"`
	Name     string  `json:"name"`
	DPI      int     `json:"dpi"`
	WidthMm  float64 `json:"width"`
	HeightMm float64 `json:"height"`
}

func (r *printerRequest) validate(requireIP bool) error {
	if requireIP && r.IP == "" {
		return NewValidationError("ip")
	}
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.DPI <= 0 {
		return NewValidationError("dpi")
	}
	if r.WidthMm <= 0 {
		return NewValidationError("width")
	}
	if r.HeightMm <= 0 {
		return NewValidationError("height")
	}
	return nil
}

func (r *printerRequest) toModel(ip string) models.Printer {
	return models.Printer{
		IP:       ip,
		Name:     r.Name,
		DPI:      r.DPI,
		WidthMm:  r.WidthMm,
		HeightMm: r.HeightMm,
	}
}
