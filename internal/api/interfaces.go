// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// PrinterHandler handles printer registry operations
type PrinterHandler interface {
	HandleListPrinters(c echo.Context) error
	HandleGetPrinter(c echo.Context) error
	HandleCreatePrinter(c echo.Context) error
	HandleUpdatePrinter(c echo.Context) error
	HandleDeletePrinter(c echo.Context) error
	HandleCountPrinters(c echo.Context) error
}

// DesignerHandler handles designer session operations
type DesignerHandler interface {
	HandleOpenSession(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleCloseSession(c echo.Context) error
	HandleAddElement(c echo.Context) error
	HandleUpdateElement(c echo.Context) error
	HandleDeleteElement(c echo.Context) error
	HandleGetDocumentMsgpack(c echo.Context) error
	HandleGetPreview(c echo.Context) error
	HandleGetPreviewStatus(c echo.Context) error
	HandleSaveSettings(c echo.Context) error
	HandleLoadSettings(c echo.Context) error
	HandlePrint(c echo.Context) error
}

// SettingsHandler handles saved variant operations outside a session
type SettingsHandler interface {
	HandleListVariants(c echo.Context) error
	HandleDeleteVariant(c echo.Context) error
}

// BindingsHandler handles value-binding rule operations
type BindingsHandler interface {
	HandleGetBindings(c echo.Context) error
	HandleUpdateBindings(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
