// Package preview keeps a designer session's rendered preview in sync with
// its label document: mutations are debounced into one render call, responses
// are delivered last-request-wins, and superseded preview assets are released.
package preview

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/label-designer/backend/internal/document"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/render"
)

// DefaultDebounce is the debounce window when the config does not set one.
const DefaultDebounce = 400 * time.Millisecond

// NewAssetStore creates the shared preview asset cache. Assets expire with
// their session so many edit bursts cannot accumulate stale previews.
func NewAssetStore(ttl time.Duration) *gocache.Cache {
	return gocache.New(ttl, 2*ttl)
}

// Config wires a Synchronizer to its session.
type Config struct {
	SessionID string
	DeviceID  string
	Variant   string
	Doc       *document.Document
	Renderer  render.Renderer
	// Resolve maps a value-element binding key to its preview content.
	// Nil means bindings resolve to the empty string.
	Resolve  func(valueID string) string
	Debounce time.Duration
	Assets   *gocache.Cache
	// Timeout bounds one render call. Zero means the renderer's own timeout.
	Timeout time.Duration
}

// Synchronizer observes document mutations for one designer session and keeps
// the rendered preview current. Mutations never block on an in-flight render;
// a response is displayed only if no newer one has been delivered.
type Synchronizer struct {
	cfg Config

	mu           sync.Mutex
	timer        *time.Timer
	issued       uint64 // seq of the most recently issued render request
	delivered    uint64 // highest seq whose response was accepted
	state        models.SyncState
	lastErr      string
	lastSyncedAt time.Time
	closed       bool
}

// NewSynchronizer creates an idle synchronizer.
func NewSynchronizer(cfg Config) *Synchronizer {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Synchronizer{cfg: cfg, state: models.SyncIdle}
}

// SetVariant switches the variant name reported to the render service.
func (s *Synchronizer) SetVariant(name string) {
	s.mu.Lock()
	s.cfg.Variant = name
	s.mu.Unlock()
}

// NotifyChanged (re)arms the debounce timer. Bursts of mutations within the
// window collapse into a single render call. An entirely empty document never
// triggers a sync.
func (s *Synchronizer) NotifyChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.cfg.Doc.IsEmpty() {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		if s.state == models.SyncPending {
			s.state = models.SyncIdle
		}
		return
	}
	s.state = models.SyncPending
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, s.fire)
}

func (s *Synchronizer) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	snap := s.cfg.Doc.Snapshot()
	if snap.IsEmpty() {
		s.state = models.SyncIdle
		s.mu.Unlock()
		return
	}
	s.issued++
	seq := s.issued
	s.state = models.SyncSyncing
	deviceID, variant := s.cfg.DeviceID, s.cfg.Variant
	s.mu.Unlock()

	go s.sync(seq, PrepareForRender(snap, s.cfg.Resolve), deviceID, variant)
}

func (s *Synchronizer) sync(seq uint64, doc models.LabelDocument, deviceID, variant string) {
	ctx := context.Background()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	data, err := s.cfg.Renderer.Render(ctx, doc, deviceID, variant)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq <= s.delivered {
		// Stale by design: a newer response has already been delivered.
		return
	}
	if err != nil {
		// Only the latest request's failure is operator-visible; no retry,
		// the next mutation re-triggers a sync.
		if seq == s.issued && s.state == models.SyncSyncing {
			s.state = models.SyncError
			s.lastErr = err.Error()
			fmt.Printf("[Preview %.8s] render failed (seq %d): %v\n", s.cfg.SessionID, seq, err)
		}
		return
	}

	s.delivered = seq
	// Replacing the cache entry releases the superseded preview asset.
	s.cfg.Assets.Set(s.cfg.SessionID, data, gocache.DefaultExpiration)
	s.lastErr = ""
	s.lastSyncedAt = time.Now()
	if seq == s.issued && s.state == models.SyncSyncing {
		s.state = models.SyncIdle
	}
}

// Preview returns the latest delivered preview asset.
func (s *Synchronizer) Preview() ([]byte, bool) {
	if v, ok := s.cfg.Assets.Get(s.cfg.SessionID); ok {
		return v.([]byte), true
	}
	return nil, false
}

// Status reports the operator-visible synchronization state.
func (s *Synchronizer) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.SyncStatus{
		State:     s.state,
		Seq:       s.delivered,
		LastError: s.lastErr,
	}
	if !s.lastSyncedAt.IsZero() {
		st.LastSyncedAt = s.lastSyncedAt.UnixMilli()
	}
	return st
}

// Close stops the pending timer and releases the preview asset. In-flight
// responses arriving afterwards are discarded.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cfg.Assets.Delete(s.cfg.SessionID)
}

// PrepareForRender produces the document actually sent to the render service:
// empty text content is suppressed, text-type value slots with no literal
// content get their binding's preview value, icons without a payload and
// barcodes without data are dropped.
func PrepareForRender(doc models.LabelDocument, resolve func(string) string) models.LabelDocument {
	out := models.EmptyDocument()
	for _, e := range doc.TextItems {
		if e.Content == "" {
			continue
		}
		out.TextItems = append(out.TextItems, e)
	}
	for _, e := range doc.ValueItems {
		if e.Type == models.ValueTypeText && e.Content == "" {
			if resolve != nil && e.ValueID != "" {
				e.Content = resolve(e.ValueID)
			}
			if e.Content == "" {
				continue
			}
		}
		if e.Type == models.ValueTypeImage && e.ImageFile == "" {
			continue
		}
		out.ValueItems = append(out.ValueItems, e)
	}
	for _, e := range doc.IconItems {
		if e.IconFile == "" {
			continue
		}
		out.IconItems = append(out.IconItems, e)
	}
	for _, e := range doc.BarcodeItems {
		if e.Data == "" {
			continue
		}
		out.BarcodeItems = append(out.BarcodeItems, e)
	}
	// Draw order within barcodes follows the sira hint, insertion order ties.
	sort.SliceStable(out.BarcodeItems, func(i, j int) bool {
		return out.BarcodeItems[i].Sira < out.BarcodeItems[j].Sira
	})
	return out
}
