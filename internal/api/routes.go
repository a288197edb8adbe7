// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/label-designer/backend/internal/bindings"
	"github.com/label-designer/backend/internal/session"
	"github.com/label-designer/backend/internal/store"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Registry      store.PrinterRegistry
	Settings      store.SettingsStore
	SessionMgr    *session.Manager
	Bindings      *bindings.Store
	MaxImageBytes int64
	Version       string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Printer  PrinterHandler
	Designer DesignerHandler
	Settings SettingsHandler
	Bindings BindingsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Registry, deps.SessionMgr),
		Printer:  NewPrinterHandler(deps.Registry),
		Designer: NewDesignerHandler(deps.SessionMgr, deps.MaxImageBytes),
		Settings: NewSettingsHandler(deps.Settings),
		Bindings: NewBindingsHandler(deps.Bindings),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Printer registry routes
	printerGroup := e.Group("/api/printers")
	printerGroup.GET("", handlers.Printer.HandleListPrinters)
	printerGroup.POST("", handlers.Printer.HandleCreatePrinter)
	printerGroup.GET("/count", handlers.Printer.HandleCountPrinters)
	printerGroup.GET("/:ip", handlers.Printer.HandleGetPrinter)
	printerGroup.PUT("/:ip", handlers.Printer.HandleUpdatePrinter)
	printerGroup.DELETE("/:ip", handlers.Printer.HandleDeletePrinter)

	// Designer session routes
	designerGroup := e.Group("/api/designer")
	designerGroup.POST("", handlers.Designer.HandleOpenSession)
	designerGroup.GET("/:sessionId", handlers.Designer.HandleGetSession)
	designerGroup.POST("/:sessionId/keepalive", handlers.Designer.HandleSessionKeepAlive)
	designerGroup.DELETE("/:sessionId", handlers.Designer.HandleCloseSession)
	designerGroup.POST("/:sessionId/elements/:kind", handlers.Designer.HandleAddElement)
	designerGroup.PUT("/:sessionId/elements/:kind/:id", handlers.Designer.HandleUpdateElement)
	designerGroup.DELETE("/:sessionId/elements/:kind/:id", handlers.Designer.HandleDeleteElement)
	designerGroup.GET("/:sessionId/document/msgpack", handlers.Designer.HandleGetDocumentMsgpack)
	designerGroup.GET("/:sessionId/preview", handlers.Designer.HandleGetPreview)
	designerGroup.GET("/:sessionId/preview/status", handlers.Designer.HandleGetPreviewStatus)
	designerGroup.POST("/:sessionId/save", handlers.Designer.HandleSaveSettings)
	designerGroup.POST("/:sessionId/load", handlers.Designer.HandleLoadSettings)
	designerGroup.POST("/:sessionId/print", handlers.Designer.HandlePrint)

	// Saved variant routes
	settingsGroup := e.Group("/api/settings")
	settingsGroup.GET("/:ip", handlers.Settings.HandleListVariants)
	settingsGroup.DELETE("/:ip/:name", handlers.Settings.HandleDeleteVariant)

	// Value binding rule routes
	bindingsGroup := e.Group("/api/config/bindings")
	bindingsGroup.GET("", handlers.Bindings.HandleGetBindings)
	bindingsGroup.PUT("", handlers.Bindings.HandleUpdateBindings)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
