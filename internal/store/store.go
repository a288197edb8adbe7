// Package store persists printers and named label variants in SQLite.
package store

import (
	"context"
	"errors"

	"github.com/label-designer/backend/internal/models"
)

// ErrExists is returned when creating a printer whose IP is already registered.
var ErrExists = errors.New("already exists")

// SettingsStore persists named label document variants keyed by device IP.
// A missing (ip, name) key is a normal condition reported via the found flag,
// never as an error. Concurrent saves to the same key are last-write-wins.
type SettingsStore interface {
	SaveSettings(ctx context.Context, ip, name string, doc models.LabelDocument) error
	LoadSettings(ctx context.Context, ip, name string) (models.LabelDocument, bool, error)
	ListSettings(ctx context.Context, ip string) ([]models.VariantInfo, error)
	DeleteSettings(ctx context.Context, ip, name string) error
}

// PrinterRegistry is the printer CRUD surface. The designer itself only
// consumes GetPrinter; the rest backs the registry endpoints.
type PrinterRegistry interface {
	ListPrinters(ctx context.Context) ([]models.Printer, error)
	GetPrinter(ctx context.Context, ip string) (models.Printer, bool, error)
	CreatePrinter(ctx context.Context, p models.Printer) error
	UpdatePrinter(ctx context.Context, ip string, p models.Printer) (bool, error)
	DeletePrinter(ctx context.Context, ip string) (bool, error)
	CountPrinters(ctx context.Context) (int, error)
}
