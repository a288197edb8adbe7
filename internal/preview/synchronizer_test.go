package preview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/label-designer/backend/internal/document"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/render"
	"github.com/label-designer/backend/internal/testutil"
)

func newTestSync(t *testing.T, renderer render.Renderer, debounce time.Duration) (*Synchronizer, *document.Document) {
	t.Helper()
	doc := document.New()
	s := NewSynchronizer(Config{
		SessionID: "test-session",
		DeviceID:  "10.0.0.5",
		Variant:   models.DefaultVariant,
		Doc:       doc,
		Renderer:  renderer,
		Debounce:  debounce,
		Assets:    NewAssetStore(time.Minute),
	})
	doc.SetOnChange(s.NotifyChanged)
	t.Cleanup(s.Close)
	return s, doc
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDebounceCollapsesBursts(t *testing.T) {
	renderer := testutil.NewMockRenderer([]byte("png-bytes"))
	s, doc := newTestSync(t, renderer, 50*time.Millisecond)

	// A burst of mutations inside the debounce window
	el := doc.AddText()
	for i := 0; i < 10; i++ {
		content := "part"
		doc.UpdateText(el.ID, document.TextUpdate{Content: &content})
	}

	waitFor(t, time.Second, func() bool {
		_, ok := s.Preview()
		return ok
	})

	if got := renderer.CallCount(); got != 1 {
		t.Errorf("burst of 11 mutations produced %d render calls, want 1", got)
	}

	asset, ok := s.Preview()
	if !ok || string(asset) != "png-bytes" {
		t.Errorf("preview = %q ok=%v", asset, ok)
	}
	if st := s.Status(); st.State != models.SyncIdle {
		t.Errorf("state after delivery = %s, want idle", st.State)
	}
}

func TestEmptyDocumentNeverSyncs(t *testing.T) {
	renderer := testutil.NewMockRenderer([]byte("png"))
	s, doc := newTestSync(t, renderer, 10*time.Millisecond)

	el := doc.AddText()
	doc.DeleteText(el.ID) // document is empty again before the window closes

	time.Sleep(60 * time.Millisecond)

	if got := renderer.CallCount(); got != 0 {
		t.Errorf("empty document triggered %d render calls, want 0", got)
	}
	if _, ok := s.Preview(); ok {
		t.Error("empty document must have no preview asset")
	}
	if st := s.Status(); st.State != models.SyncIdle {
		t.Errorf("state = %s, want idle", st.State)
	}
}

func TestRenderErrorIsTransient(t *testing.T) {
	renderer := testutil.NewMockRenderer(nil)
	renderer.SetErr(testutil.ErrUnavailable)
	s, doc := newTestSync(t, renderer, 10*time.Millisecond)

	content := "x"
	el := doc.AddText()
	doc.UpdateText(el.ID, document.TextUpdate{Content: &content})

	waitFor(t, time.Second, func() bool {
		return s.Status().State == models.SyncError
	})
	if st := s.Status(); st.LastError == "" {
		t.Error("error state must carry the failure message")
	}

	// The next successful sync replaces the error
	renderer.SetErr(nil)
	renderer.SetAsset([]byte("recovered"))
	doc.UpdateText(el.ID, document.TextUpdate{Content: &content})

	waitFor(t, time.Second, func() bool {
		_, ok := s.Preview()
		return ok
	})
	if st := s.Status(); st.State != models.SyncIdle || st.LastError != "" {
		t.Errorf("after recovery: state=%s lastError=%q", st.State, st.LastError)
	}
}

// seqRenderer delays its first response past its second, so the older
// response arrives after the newer one was delivered.
type seqRenderer struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
}

func (r *seqRenderer) Render(ctx context.Context, doc models.LabelDocument, deviceID, variant string) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()

	if call == 1 {
		<-r.gate // held until the second response is through
		return []byte("stale"), nil
	}
	return []byte("fresh"), nil
}

func TestStaleResponseNeverDisplayed(t *testing.T) {
	renderer := &seqRenderer{gate: make(chan struct{})}
	s, doc := newTestSync(t, renderer, 10*time.Millisecond)

	content := "a"
	el := doc.AddText()
	doc.UpdateText(el.ID, document.TextUpdate{Content: &content})

	// Wait for the first (slow) render call to be issued
	waitFor(t, time.Second, func() bool {
		renderer.mu.Lock()
		defer renderer.mu.Unlock()
		return renderer.calls == 1
	})

	// A second mutation issues a newer request, which completes first
	content = "b"
	doc.UpdateText(el.ID, document.TextUpdate{Content: &content})
	waitFor(t, time.Second, func() bool {
		asset, ok := s.Preview()
		return ok && string(asset) == "fresh"
	})

	// Now release the stale response; it must be discarded
	close(renderer.gate)
	time.Sleep(50 * time.Millisecond)

	asset, ok := s.Preview()
	if !ok || string(asset) != "fresh" {
		t.Errorf("preview = %q ok=%v, stale response must never replace a newer one", asset, ok)
	}
	if st := s.Status(); st.Seq != 2 {
		t.Errorf("delivered seq = %d, want 2", st.Seq)
	}
}

func TestCloseReleasesPreview(t *testing.T) {
	renderer := testutil.NewMockRenderer([]byte("png"))
	s, doc := newTestSync(t, renderer, 10*time.Millisecond)

	content := "x"
	el := doc.AddText()
	doc.UpdateText(el.ID, document.TextUpdate{Content: &content})
	waitFor(t, time.Second, func() bool {
		_, ok := s.Preview()
		return ok
	})

	s.Close()
	if _, ok := s.Preview(); ok {
		t.Error("closed synchronizer must release its preview asset")
	}
}

func TestPrepareForRender(t *testing.T) {
	doc := models.EmptyDocument()
	doc.TextItems = []models.TextElement{
		{ID: 1, Content: "visible"},
		{ID: 2, Content: ""}, // suppressed
	}
	doc.ValueItems = []models.ValueElement{
		{ID: 1, Type: models.ValueTypeText, Content: "literal"},
		{ID: 2, Type: models.ValueTypeText, ValueID: "station.lot"},          // resolved
		{ID: 3, Type: models.ValueTypeText, ValueID: "unknown.key"},          // resolves empty, dropped
		{ID: 4, Type: models.ValueTypeImage, ImageFile: "data:image/png..."}, // kept
		{ID: 5, Type: models.ValueTypeImage},                                 // no payload, dropped
	}
	doc.IconItems = []models.IconElement{
		{ID: 1, IconFile: "data:image/png..."},
		{ID: 2}, // no payload, dropped
	}
	doc.BarcodeItems = []models.BarcodeElement{
		{ID: 1, Sira: 3, Data: "third"},
		{ID: 2, Sira: 1, Data: "first"},
		{ID: 3, Sira: 2, Data: ""}, // no data, dropped
	}

	resolve := func(valueID string) string {
		if valueID == "station.lot" {
			return "LOT-7"
		}
		return ""
	}

	out := PrepareForRender(doc, resolve)

	if len(out.TextItems) != 1 || out.TextItems[0].ID != 1 {
		t.Errorf("text items = %+v", out.TextItems)
	}

	if len(out.ValueItems) != 3 {
		t.Fatalf("value items = %+v, want 3", out.ValueItems)
	}
	if out.ValueItems[1].Content != "LOT-7" {
		t.Errorf("bound value content = %q, want LOT-7", out.ValueItems[1].Content)
	}

	if len(out.IconItems) != 1 {
		t.Errorf("icon items = %+v", out.IconItems)
	}

	if len(out.BarcodeItems) != 2 {
		t.Fatalf("barcode items = %+v, want 2", out.BarcodeItems)
	}
	if out.BarcodeItems[0].Sira != 1 || out.BarcodeItems[1].Sira != 3 {
		t.Errorf("barcodes not ordered by sira: %+v", out.BarcodeItems)
	}
}
