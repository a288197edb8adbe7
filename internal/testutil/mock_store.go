// mock_store.go - In-memory store and service mocks for testing
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/store"
)

// MockStore implements store.PrinterRegistry and store.SettingsStore
// backed by maps
type MockStore struct {
	mu       sync.RWMutex
	printers map[string]models.Printer
	settings map[string]map[string]models.LabelDocument // ip -> name -> doc
	saved    map[string]int64                           // ip|name -> updatedAt ms

	// FailSave, when set, is returned by SaveSettings to simulate a
	// persistence outage
	FailSave error

	// FailCount, when set, is returned by CountPrinters to simulate an
	// unreachable registry
	FailCount error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		printers: make(map[string]models.Printer),
		settings: make(map[string]map[string]models.LabelDocument),
		saved:    make(map[string]int64),
	}
}

func (m *MockStore) ListPrinters(ctx context.Context) ([]models.Printer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	printers := make([]models.Printer, 0, len(m.printers))
	for _, p := range m.printers {
		printers = append(printers, p)
	}
	return printers, nil
}

func (m *MockStore) GetPrinter(ctx context.Context, ip string) (models.Printer, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.printers[ip]
	return p, ok, nil
}

func (m *MockStore) CreatePrinter(ctx context.Context, p models.Printer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.printers[p.IP]; ok {
		return store.ErrExists
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.printers[p.IP] = p
	return nil
}

func (m *MockStore) UpdatePrinter(ctx context.Context, ip string, p models.Printer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.printers[ip]
	if !ok {
		return false, nil
	}
	p.IP = ip
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	m.printers[ip] = p
	return true, nil
}

func (m *MockStore) DeletePrinter(ctx context.Context, ip string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.printers[ip]; !ok {
		return false, nil
	}
	delete(m.printers, ip)
	return true, nil
}

func (m *MockStore) CountPrinters(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailCount != nil {
		return 0, m.FailCount
	}
	return len(m.printers), nil
}

func (m *MockStore) SaveSettings(ctx context.Context, ip, name string, doc models.LabelDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		return m.FailSave
	}
	if m.settings[ip] == nil {
		m.settings[ip] = make(map[string]models.LabelDocument)
	}
	m.settings[ip][name] = doc.Clone()
	m.saved[ip+"|"+name] = time.Now().UnixMilli()
	return nil
}

func (m *MockStore) LoadSettings(ctx context.Context, ip, name string) (models.LabelDocument, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.settings[ip][name]
	if !ok {
		return models.EmptyDocument(), false, nil
	}
	return doc.Clone(), true, nil
}

func (m *MockStore) ListSettings(ctx context.Context, ip string) ([]models.VariantInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	variants := make([]models.VariantInfo, 0, len(m.settings[ip]))
	for name := range m.settings[ip] {
		variants = append(variants, models.VariantInfo{
			Name:      name,
			UpdatedAt: m.saved[ip+"|"+name],
		})
	}
	return variants, nil
}

func (m *MockStore) DeleteSettings(ctx context.Context, ip, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.settings[ip], name)
	delete(m.saved, ip+"|"+name)
	return nil
}

// SaveCount returns how many variants are stored for a device
func (m *MockStore) SaveCount(ip string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.settings[ip])
}

// MockRenderer implements render.Renderer with a configurable response
type MockRenderer struct {
	mu sync.Mutex

	// Asset is returned on each successful render
	Asset []byte
	// Err, when set, makes Render fail
	Err error
	// Delay simulates render latency
	Delay time.Duration

	calls []models.LabelDocument
}

// NewMockRenderer creates a renderer that returns a fixed asset
func NewMockRenderer(asset []byte) *MockRenderer {
	return &MockRenderer{Asset: asset}
}

func (m *MockRenderer) Render(ctx context.Context, doc models.LabelDocument, deviceID, variant string) ([]byte, error) {
	m.mu.Lock()
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, doc.Clone())
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Asset, nil
}

// SetErr swaps the failure injected into subsequent Render calls
func (m *MockRenderer) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

// SetAsset swaps the asset returned by subsequent Render calls
func (m *MockRenderer) SetAsset(asset []byte) {
	m.mu.Lock()
	m.Asset = asset
	m.mu.Unlock()
}

// Calls returns the documents passed to Render so far
func (m *MockRenderer) Calls() []models.LabelDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.LabelDocument(nil), m.calls...)
}

// CallCount returns the number of Render invocations
func (m *MockRenderer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MockPrintService implements render.PrintService
type MockPrintService struct {
	mu sync.Mutex

	// Err, when set, makes Print fail
	Err error

	jobs []PrintJob
}

// PrintJob records one dispatched print request
type PrintJob struct {
	DeviceID string
	Variant  string
}

// NewMockPrintService creates a print service that accepts every job
func NewMockPrintService() *MockPrintService {
	return &MockPrintService{}
}

func (m *MockPrintService) Print(ctx context.Context, deviceID, variant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.jobs = append(m.jobs, PrintJob{DeviceID: deviceID, Variant: variant})
	return nil
}

// Jobs returns the dispatched print jobs
func (m *MockPrintService) Jobs() []PrintJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PrintJob(nil), m.jobs...)
}

// ErrUnavailable is a reusable transient failure for store and service mocks
var ErrUnavailable = errors.New("service unavailable")
