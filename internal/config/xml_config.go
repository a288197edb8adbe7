// Package config provides XML-based configuration management for the label
// designer backend.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"LabelDesigner"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Designer session tuning
	Designer DesignerConfig `xml:"Designer"`

	// External collaborator services
	Services ServicesConfig `xml:"Services"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains persistence settings
type StorageConfig struct {
	DataDirectory string `xml:"DataDirectory"`
	DatabasePath  string `xml:"DatabasePath"`
	BindingsPath  string `xml:"BindingsPath"`
}

// DesignerConfig contains designer session and preview tuning
type DesignerConfig struct {
	DebounceMs             int `xml:"PreviewDebounceMs"`
	PreviewTTLMinutes      int `xml:"PreviewTTLMinutes"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
	MaxSessions            int `xml:"MaxSessions"`
	MaxImagePayloadKB      int `xml:"MaxImagePayloadKB"`
}

// ServicesConfig locates the external render and print services
type ServicesConfig struct {
	RenderURL             string `xml:"RenderServiceURL"`
	PrintURL              string `xml:"PrintServiceURL"`
	RequestTimeoutSeconds int    `xml:"RequestTimeoutSeconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8088,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			DatabasePath:  "./data/database.db",
			BindingsPath:  "./data/bindings.yaml",
		},
		Designer: DesignerConfig{
			DebounceMs:             400,
			PreviewTTLMinutes:      30,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
			MaxSessions:            16,
			MaxImagePayloadKB:      2048,
		},
		Services: ServicesConfig{
			RenderURL:             "http://127.0.0.1:8090",
			PrintURL:              "http://127.0.0.1:8090",
			RequestTimeoutSeconds: 15,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Label Designer Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.DatabasePath = filepath.Join(dataDir, "database.db")
		c.Storage.BindingsPath = filepath.Join(dataDir, "bindings.yaml")
	}

	// RENDER_SERVICE_URL override
	if url := os.Getenv("RENDER_SERVICE_URL"); url != "" {
		c.Services.RenderURL = url
	}

	// PRINT_SERVICE_URL override
	if url := os.Getenv("PRINT_SERVICE_URL"); url != "" {
		c.Services.PrintURL = url
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.DatabasePath) {
		c.Storage.DatabasePath = filepath.Join(configDir, c.Storage.DatabasePath)
	}
	if !filepath.IsAbs(c.Storage.BindingsPath) {
		c.Storage.BindingsPath = filepath.Join(configDir, c.Storage.BindingsPath)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// MaxImagePayloadBytes returns the image payload limit in bytes.
func (c *AppConfig) MaxImagePayloadBytes() int64 {
	return int64(c.Designer.MaxImagePayloadKB) * 1024
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		filepath.Dir(c.Storage.DatabasePath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
