package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/label-designer/backend/internal/api"
	"github.com/label-designer/backend/internal/bindings"
	"github.com/label-designer/backend/internal/config"
	"github.com/label-designer/backend/internal/preview"
	"github.com/label-designer/backend/internal/render"
	"github.com/label-designer/backend/internal/session"
	"github.com/label-designer/backend/internal/store"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "LabelDesigner.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize persistence
	db, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Load value binding rules; a missing rules file yields empty rules
	bindingStore, err := bindings.NewStore(cfg.Storage.BindingsPath)
	if err != nil {
		fmt.Printf("Failed to load binding rules: %v\n", err)
		os.Exit(1)
	}

	// Collaborator service clients
	serviceTimeout := time.Duration(cfg.Services.RequestTimeoutSeconds) * time.Second
	renderClient := render.NewClient(cfg.Services.RenderURL, serviceTimeout)
	printClient := render.NewClient(cfg.Services.PrintURL, serviceTimeout)

	// Preview asset cache
	assets := preview.NewAssetStore(time.Duration(cfg.Designer.PreviewTTLMinutes) * time.Minute)

	// Initialize session manager
	sessionMgr := session.NewManager(session.Deps{
		Registry:       db,
		Settings:       db,
		Renderer:       renderClient,
		Printing:       printClient,
		Bindings:       bindingStore,
		Assets:         assets,
		Debounce:       time.Duration(cfg.Designer.DebounceMs) * time.Millisecond,
		PreviewTimeout: serviceTimeout,
		MaxSessions:    cfg.Designer.MaxSessions,
	})

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Designer.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Designer.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/preview") ||
				strings.HasSuffix(path, "/preview/status") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Save and print wait on external services with their own timeout
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/save") ||
				strings.HasSuffix(path, "/print")
		},
		ErrorMessage: "Request timeout",
	}))

	// Body limit bounds inline image payloads before they reach handlers
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API routes
	handlers := api.NewHandlers(&api.Dependencies{
		Registry:      db,
		Settings:      db,
		SessionMgr:    sessionMgr,
		Bindings:      bindingStore,
		MaxImageBytes: cfg.MaxImagePayloadBytes(),
		Version:       Version,
	})
	api.RegisterRoutes(e, handlers)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Label Designer Server                           ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Renderer:  %-46s║\n", cfg.Services.RenderURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
