package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/label-designer/backend/internal/models"
)

// SQLite implements SettingsStore and PrinterRegistry on a single database
// file with one table per concern.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dbPath and runs the
// schema migration.
func Open(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS printers (
	ip         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	dpi        INTEGER NOT NULL,
	width_mm   REAL NOT NULL,
	height_mm  REAL NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS label_settings (
	ip         TEXT NOT NULL,
	name       TEXT NOT NULL,
	document   TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (ip, name)
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// SaveSettings upserts the variant. Saving identical content twice yields the
// same persisted state; the later write wins on conflict.
func (s *SQLite) SaveSettings(ctx context.Context, ip, name string, doc models.LabelDocument) error {
	doc.Normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO label_settings (ip, name, document, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(ip, name) DO UPDATE SET
            document = excluded.document,
            updated_at = excluded.updated_at
    `, ip, name, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving settings %s/%s: %w", ip, name, err)
	}
	return nil
}

// LoadSettings returns the stored variant, or found=false when the key does
// not exist (a normal condition, e.g. first use of a printer).
func (s *SQLite) LoadSettings(ctx context.Context, ip, name string) (models.LabelDocument, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
        SELECT document FROM label_settings WHERE ip = ? AND name = ?
    `, ip, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmptyDocument(), false, nil
	}
	if err != nil {
		return models.LabelDocument{}, false, fmt.Errorf("loading settings %s/%s: %w", ip, name, err)
	}

	var doc models.LabelDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return models.LabelDocument{}, false, fmt.Errorf("decoding settings %s/%s: %w", ip, name, err)
	}
	doc.Normalize()
	return doc, true, nil
}

// ListSettings returns the saved variants for a device, most recent first.
func (s *SQLite) ListSettings(ctx context.Context, ip string) ([]models.VariantInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT name, updated_at FROM label_settings
        WHERE ip = ? ORDER BY updated_at DESC
    `, ip)
	if err != nil {
		return nil, fmt.Errorf("listing settings for %s: %w", ip, err)
	}
	defer rows.Close()

	variants := make([]models.VariantInfo, 0)
	for rows.Next() {
		var v models.VariantInfo
		if err := rows.Scan(&v.Name, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// DeleteSettings removes a variant. Missing keys are a no-op.
func (s *SQLite) DeleteSettings(ctx context.Context, ip, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM label_settings WHERE ip = ? AND name = ?`, ip, name)
	if err != nil {
		return fmt.Errorf("deleting settings %s/%s: %w", ip, name, err)
	}
	return nil
}

// ListPrinters returns all registered printers, newest first.
func (s *SQLite) ListPrinters(ctx context.Context) ([]models.Printer, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT ip, name, dpi, width_mm, height_mm, created_at, updated_at
        FROM printers ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("listing printers: %w", err)
	}
	defer rows.Close()

	printers := make([]models.Printer, 0)
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, err
		}
		printers = append(printers, p)
	}
	return printers, rows.Err()
}

// GetPrinter returns the printer with the given IP, or found=false.
func (s *SQLite) GetPrinter(ctx context.Context, ip string) (models.Printer, bool, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT ip, name, dpi, width_mm, height_mm, created_at, updated_at
        FROM printers WHERE ip = ?
    `, ip)
	p, err := scanPrinter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Printer{}, false, nil
	}
	if err != nil {
		return models.Printer{}, false, err
	}
	return p, true, nil
}

// CreatePrinter registers a new printer. ErrExists when the IP is taken.
func (s *SQLite) CreatePrinter(ctx context.Context, p models.Printer) error {
	now := time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO printers (ip, name, dpi, width_mm, height_mm, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(ip) DO NOTHING
    `, p.IP, p.Name, p.DPI, p.WidthMm, p.HeightMm, now, now)
	if err != nil {
		return fmt.Errorf("creating printer %s: %w", p.IP, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating printer %s: %w", p.IP, err)
	}
	if n == 0 {
		return fmt.Errorf("printer %s: %w", p.IP, ErrExists)
	}
	return nil
}

// UpdatePrinter updates a registered printer. Returns false when the IP is
// not registered.
func (s *SQLite) UpdatePrinter(ctx context.Context, ip string, p models.Printer) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE printers SET name = ?, dpi = ?, width_mm = ?, height_mm = ?, updated_at = ?
        WHERE ip = ?
    `, p.Name, p.DPI, p.WidthMm, p.HeightMm, time.Now().UnixMilli(), ip)
	if err != nil {
		return false, fmt.Errorf("updating printer %s: %w", ip, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating printer %s: %w", ip, err)
	}
	return n > 0, nil
}

// DeletePrinter removes a printer. Returns false when the IP is not registered.
func (s *SQLite) DeletePrinter(ctx context.Context, ip string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM printers WHERE ip = ?`, ip)
	if err != nil {
		return false, fmt.Errorf("deleting printer %s: %w", ip, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting printer %s: %w", ip, err)
	}
	return n > 0, nil
}

// CountPrinters returns the number of registered printers.
func (s *SQLite) CountPrinters(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM printers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting printers: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrinter(row rowScanner) (models.Printer, error) {
	var p models.Printer
	var createdAt, updatedAt int64
	if err := row.Scan(&p.IP, &p.Name, &p.DPI, &p.WidthMm, &p.HeightMm, &createdAt, &updatedAt); err != nil {
		return models.Printer{}, err
	}
	p.CreatedAt = time.UnixMilli(createdAt)
	p.UpdatedAt = time.UnixMilli(updatedAt)
	return p, nil
}
