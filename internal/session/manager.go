// Package session manages active label designer sessions: one mutable
// document per session, its preview synchronizer, and the save/load/print
// lifecycle against the settings store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/label-designer/backend/internal/bindings"
	"github.com/label-designer/backend/internal/document"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/preview"
	"github.com/label-designer/backend/internal/render"
	"github.com/label-designer/backend/internal/store"
)

// DefaultMaxSessions limits concurrent designer sessions.
const DefaultMaxSessions = 16

// KeepAliveWindow is how long a recently touched session is exempt from
// age-based cleanup.
const KeepAliveWindow = 5 * time.Minute

// ErrPrinterNotFound is returned when opening a session for an unknown device.
var ErrPrinterNotFound = errors.New("printer not found")

// ErrSessionNotFound is returned by lifecycle operations on unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// Deps wires the manager to its collaborators.
type Deps struct {
	Registry store.PrinterRegistry
	Settings store.SettingsStore
	Renderer render.Renderer
	Printing render.PrintService
	Bindings *bindings.Store
	Assets   *gocache.Cache
	Debounce time.Duration
	// PreviewTimeout bounds one render call issued by a synchronizer.
	PreviewTimeout time.Duration
	MaxSessions    int
}

// State holds one designer session with its document and synchronizer.
type State struct {
	Session      *models.DesignSession
	Doc          *document.Document
	Sync         *preview.Synchronizer
	LastAccessed time.Time

	// savedRevision is the document revision at the last successful save.
	// A newer revision means unsaved edits.
	savedRevision uint64
}

// Manager handles active designer sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*State
	deps     Deps
}

// NewManager creates a session manager.
func NewManager(deps Deps) *Manager {
	if deps.MaxSessions <= 0 {
		deps.MaxSessions = DefaultMaxSessions
	}
	if deps.Assets == nil {
		deps.Assets = preview.NewAssetStore(30 * time.Minute)
	}
	return &Manager{
		sessions: make(map[string]*State),
		deps:     deps,
	}
}

// Open starts a designer session for the printer with the given IP. The
// "default" variant is auto-loaded when it exists; a missing variant is a
// normal first-use condition and yields an empty document.
func (m *Manager) Open(ctx context.Context, ip string) (models.DesignSession, error) {
	m.cleanupIfAtLimit()

	printer, found, err := m.deps.Registry.GetPrinter(ctx, ip)
	if err != nil {
		return models.DesignSession{}, fmt.Errorf("looking up printer %s: %w", ip, err)
	}
	if !found {
		return models.DesignSession{}, ErrPrinterNotFound
	}

	sessionID := uuid.New().String()
	doc := document.New()

	loadedDoc, loaded, err := m.deps.Settings.LoadSettings(ctx, ip, models.DefaultVariant)
	if err != nil {
		return models.DesignSession{}, fmt.Errorf("loading default variant for %s: %w", ip, err)
	}
	if loaded {
		doc.ReplaceAll(loadedDoc)
	}

	sess := &models.DesignSession{
		ID:        sessionID,
		PrinterIP: ip,
		Printer:   printer,
		Canvas:    models.CanvasFor(printer),
		Variant:   models.DefaultVariant,
		Loaded:    loaded,
		CreatedAt: time.Now().UnixMilli(),
	}

	sync := preview.NewSynchronizer(preview.Config{
		SessionID: sessionID,
		DeviceID:  ip,
		Variant:   models.DefaultVariant,
		Doc:       doc,
		Renderer:  m.deps.Renderer,
		Resolve:   m.resolveBinding,
		Debounce:  m.deps.Debounce,
		Assets:    m.deps.Assets,
		Timeout:   m.deps.PreviewTimeout,
	})
	doc.SetOnChange(sync.NotifyChanged)

	state := &State{
		Session:       sess,
		Doc:           doc,
		Sync:          sync,
		LastAccessed:  time.Now(),
		savedRevision: doc.Revision(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	fmt.Printf("[Session %.8s] opened for %s (variant %q, loaded=%v)\n",
		sessionID, ip, models.DefaultVariant, loaded)

	// Render the loaded variant right away so the designer opens with a
	// preview instead of waiting for the first edit.
	if loaded {
		sync.NotifyChanged()
	}

	return *sess, nil
}

func (m *Manager) resolveBinding(valueID string) string {
	if m.deps.Bindings == nil {
		return ""
	}
	return m.deps.Bindings.Resolve(valueID)
}

// Get returns a copy of the session by ID. Callers marshal the result
// outside the manager lock, so handing out the shared pointer would race
// with Save and Load updating Variant and Loaded.
func (m *Manager) Get(id string) (models.DesignSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return models.DesignSession{}, false
	}
	return *state.Session, true
}

// Doc returns the mutable document for a session. The document carries its
// own lock, so callers may mutate it directly.
func (m *Manager) Doc(id string) (*document.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Doc, true
}

// Touch updates the keep-alive timestamp for a session.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Close ends a session, stopping its synchronizer and releasing its preview.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	state.Sync.Close()
	fmt.Printf("[Session %.8s] closed\n", id)
	return true
}

// Preview returns the latest preview asset and synchronizer status.
func (m *Manager) Preview(id string) ([]byte, models.SyncStatus, bool) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, models.SyncStatus{}, false
	}

	asset, _ := state.Sync.Preview()
	return asset, state.Sync.Status(), true
}

// Document returns a deep snapshot of the session's document.
func (m *Manager) Document(id string) (models.LabelDocument, bool) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return models.LabelDocument{}, false
	}
	return state.Doc.Snapshot(), true
}

// DocumentMsgpack returns the session's document snapshot in msgpack
// encoding for compact transfer to the preview panel.
func (m *Manager) DocumentMsgpack(id string) ([]byte, bool, error) {
	doc, ok := m.Document(id)
	if !ok {
		return nil, false, nil
	}
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, true, fmt.Errorf("encoding document: %w", err)
	}
	return data, true, nil
}

// Save persists the session's document as the named variant and makes that
// variant active. An empty name saves the active variant.
func (m *Manager) Save(ctx context.Context, id, name string) error {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		state.LastAccessed = time.Now()
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	if name == "" {
		name = state.Session.Variant
	}

	rev := state.Doc.Revision()
	snap := state.Doc.Snapshot()
	if err := m.deps.Settings.SaveSettings(ctx, state.Session.PrinterIP, name, snap); err != nil {
		return err
	}

	m.mu.Lock()
	state.Session.Variant = name
	state.Session.Loaded = true
	state.savedRevision = rev
	m.mu.Unlock()
	state.Sync.SetVariant(name)

	fmt.Printf("[Session %.8s] saved variant %q for %s\n", id, name, state.Session.PrinterIP)
	return nil
}

// Load replaces the session's document with the named variant. found=false
// means the variant does not exist, which callers treat as a normal branch.
func (m *Manager) Load(ctx context.Context, id, name string) (models.LabelDocument, bool, error) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		state.LastAccessed = time.Now()
	}
	m.mu.Unlock()
	if !ok {
		return models.LabelDocument{}, false, ErrSessionNotFound
	}

	if name == "" {
		name = models.DefaultVariant
	}

	doc, found, err := m.deps.Settings.LoadSettings(ctx, state.Session.PrinterIP, name)
	if err != nil {
		return models.LabelDocument{}, false, err
	}
	if !found {
		return models.LabelDocument{}, false, nil
	}

	state.Doc.ReplaceAll(doc)

	m.mu.Lock()
	state.Session.Variant = name
	state.Session.Loaded = true
	state.savedRevision = state.Doc.Revision()
	m.mu.Unlock()
	state.Sync.SetVariant(name)

	fmt.Printf("[Session %.8s] loaded variant %q for %s\n", id, name, state.Session.PrinterIP)
	return doc, true, nil
}

// Print dispatches the named variant (active variant when empty) to the
// device. Unsaved edits are saved first: the dispatcher itself never saves
// implicitly, and the print service only reads durably stored variants.
func (m *Manager) Print(ctx context.Context, id, name string) error {
	m.mu.RLock()
	state, ok := m.sessions[id]
	var active string
	var savedRev uint64
	if ok {
		active = state.Session.Variant
		savedRev = state.savedRevision
	}
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	if name == "" {
		name = active
	}

	if name != active || state.Doc.Revision() != savedRev {
		if err := m.Save(ctx, id, name); err != nil {
			return fmt.Errorf("saving before print: %w", err)
		}
	}

	if err := m.deps.Printing.Print(ctx, state.Session.PrinterIP, name); err != nil {
		return err
	}
	fmt.Printf("[Session %.8s] printed variant %q on %s\n", id, name, state.Session.PrinterIP)
	return nil
}

// cleanupIfAtLimit drops the stalest sessions when at capacity.
func (m *Manager) cleanupIfAtLimit() {
	m.mu.Lock()

	var victims []*State
	if len(m.sessions) >= m.deps.MaxSessions {
		toFree := len(m.sessions) - m.deps.MaxSessions + 1
		for i := 0; i < toFree; i++ {
			var oldest string
			var oldestAt time.Time
			for id, state := range m.sessions {
				if oldest == "" || state.LastAccessed.Before(oldestAt) {
					oldest = id
					oldestAt = state.LastAccessed
				}
			}
			if oldest == "" {
				break
			}
			victims = append(victims, m.sessions[oldest])
			delete(m.sessions, oldest)
			fmt.Printf("[Manager] evicted session %.8s to free capacity\n", oldest)
		}
	}
	m.mu.Unlock()

	for _, v := range victims {
		v.Sync.Close()
	}
}

// CleanupOldSessions removes sessions idle longer than maxAge, keeping
// anything touched within the keep-alive window.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-KeepAliveWindow)

	m.mu.Lock()
	var victims []*State
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			victims = append(victims, state)
			delete(m.sessions, id)
			fmt.Printf("[Manager] cleaned up aged session %.8s (idle %s)\n",
				id, time.Since(state.LastAccessed).Round(time.Second))
		}
	}
	m.mu.Unlock()

	for _, v := range victims {
		v.Sync.Close()
	}
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
