package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/label-designer/backend/internal/document"
	"github.com/label-designer/backend/internal/models"
	"github.com/label-designer/backend/internal/testutil"
)

type testManager struct {
	*Manager
	store    *testutil.MockStore
	renderer *testutil.MockRenderer
	printer  *testutil.MockPrintService
}

func newTestManager(t *testing.T, maxSessions int) *testManager {
	t.Helper()
	store := testutil.NewMockStore()
	store.CreatePrinter(context.Background(), models.Printer{
		IP: "10.0.0.5", Name: "dock-1", DPI: 300, WidthMm: 100, HeightMm: 30,
	})

	renderer := testutil.NewMockRenderer([]byte("png"))
	printer := testutil.NewMockPrintService()
	m := NewManager(Deps{
		Registry:    store,
		Settings:    store,
		Renderer:    renderer,
		Printing:    printer,
		Debounce:    10 * time.Millisecond,
		MaxSessions: maxSessions,
	})
	return &testManager{Manager: m, store: store, renderer: renderer, printer: printer}
}

func TestOpenUnknownPrinter(t *testing.T) {
	m := newTestManager(t, 4)
	_, err := m.Open(context.Background(), "10.9.9.9")
	if !errors.Is(err, ErrPrinterNotFound) {
		t.Errorf("expected ErrPrinterNotFound, got %v", err)
	}
}

func TestOpenComputesCanvas(t *testing.T) {
	m := newTestManager(t, 4)
	sess, err := m.Open(context.Background(), "10.0.0.5")
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close(sess.ID)

	if sess.Canvas.WidthPx != 1181 || sess.Canvas.HeightPx != 354 {
		t.Errorf("canvas = %+v, want 1181x354", sess.Canvas)
	}
	if sess.Variant != models.DefaultVariant {
		t.Errorf("active variant = %q, want default", sess.Variant)
	}
	if sess.Loaded {
		t.Error("no stored default variant, so loaded must be false")
	}
	doc, ok := m.Document(sess.ID)
	if !ok || !doc.IsEmpty() {
		t.Error("fresh session must start with an empty document")
	}
}

func TestOpenAutoLoadsDefaultVariant(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	stored := models.EmptyDocument()
	stored.TextItems = []models.TextElement{{ID: 3, Content: "stored"}}
	m.store.SaveSettings(ctx, "10.0.0.5", models.DefaultVariant, stored)

	sess, err := m.Open(ctx, "10.0.0.5")
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close(sess.ID)

	if !sess.Loaded {
		t.Error("expected loaded=true when the default variant exists")
	}
	doc, _ := m.Document(sess.ID)
	if len(doc.TextItems) != 1 || doc.TextItems[0].Content != "stored" {
		t.Errorf("document = %+v", doc)
	}

	// Loaded ids seed the counters, so new elements continue past them
	d, _ := m.Doc(sess.ID)
	if got := d.AddText().ID; got != 4 {
		t.Errorf("text id after auto-load = %d, want 4", got)
	}
}

func TestSaveLoadCycle(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, err := m.Open(ctx, "10.0.0.5")
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close(sess.ID)

	d, _ := m.Doc(sess.ID)
	el := d.AddText()
	content := "v1"
	d.UpdateText(el.ID, document.TextUpdate{Content: &content})

	if err := m.Save(ctx, sess.ID, "small"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got, _ := m.Get(sess.ID); got.Variant != "small" {
		t.Errorf("active variant after save = %q, want small", got.Variant)
	}

	// Mutate, then load the saved variant back
	content = "v2"
	d.UpdateText(el.ID, document.TextUpdate{Content: &content})

	doc, found, err := m.Load(ctx, sess.ID, "small")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if doc.TextItems[0].Content != "v1" {
		t.Errorf("loaded content = %q, want v1", doc.TextItems[0].Content)
	}

	// Loading a missing variant is a normal branch, not an error
	_, found, err = m.Load(ctx, sess.ID, "nope")
	if err != nil {
		t.Errorf("missing variant must not error, got %v", err)
	}
	if found {
		t.Error("expected found=false for missing variant")
	}
}

func TestSaveEmptyNameUsesActiveVariant(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, _ := m.Open(ctx, "10.0.0.5")
	defer m.Close(sess.ID)

	d, _ := m.Doc(sess.ID)
	d.AddText()

	if err := m.Save(ctx, sess.ID, ""); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := m.store.LoadSettings(ctx, "10.0.0.5", models.DefaultVariant); !found {
		t.Error("empty save name must target the active variant")
	}
}

func TestPrintSavesUnsavedEditsFirst(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, _ := m.Open(ctx, "10.0.0.5")
	defer m.Close(sess.ID)

	d, _ := m.Doc(sess.ID)
	d.AddText()

	if err := m.Print(ctx, sess.ID, ""); err != nil {
		t.Fatalf("print failed: %v", err)
	}

	// The unsaved document was persisted before dispatch
	if _, found, _ := m.store.LoadSettings(ctx, "10.0.0.5", models.DefaultVariant); !found {
		t.Error("print must save unsaved edits before dispatching")
	}

	jobs := m.printer.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("jobs = %+v, want 1", jobs)
	}
	if jobs[0].DeviceID != "10.0.0.5" || jobs[0].Variant != models.DefaultVariant {
		t.Errorf("job = %+v", jobs[0])
	}
}

func TestPrintSkipsSaveWhenClean(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, _ := m.Open(ctx, "10.0.0.5")
	defer m.Close(sess.ID)

	d, _ := m.Doc(sess.ID)
	d.AddText()
	if err := m.Save(ctx, sess.ID, "run"); err != nil {
		t.Fatal(err)
	}

	// A failing store would make a redundant save visible
	m.store.FailSave = testutil.ErrUnavailable
	if err := m.Print(ctx, sess.ID, "run"); err != nil {
		t.Fatalf("print of a clean document must not re-save: %v", err)
	}
	if len(m.printer.Jobs()) != 1 {
		t.Error("expected dispatched job")
	}
}

func TestPrintFailedSaveBlocksDispatch(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, _ := m.Open(ctx, "10.0.0.5")
	defer m.Close(sess.ID)

	d, _ := m.Doc(sess.ID)
	d.AddText()

	m.store.FailSave = testutil.ErrUnavailable
	if err := m.Print(ctx, sess.ID, ""); err == nil {
		t.Fatal("expected print to fail when the save fails")
	}
	if len(m.printer.Jobs()) != 0 {
		t.Error("no job may be dispatched when the save failed")
	}
}

func TestSessionLimitEvictsOldest(t *testing.T) {
	m := newTestManager(t, 2)
	ctx := context.Background()

	first, _ := m.Open(ctx, "10.0.0.5")
	time.Sleep(2 * time.Millisecond)
	second, _ := m.Open(ctx, "10.0.0.5")
	time.Sleep(2 * time.Millisecond)
	third, _ := m.Open(ctx, "10.0.0.5")

	if m.Len() != 2 {
		t.Errorf("len = %d, want 2", m.Len())
	}
	if _, ok := m.Get(first.ID); ok {
		t.Error("oldest session must be evicted at the limit")
	}
	if _, ok := m.Get(second.ID); !ok {
		t.Error("second session must survive")
	}
	if _, ok := m.Get(third.ID); !ok {
		t.Error("newest session must survive")
	}
}

func TestCleanupHonorsKeepAlive(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, _ := m.Open(ctx, "10.0.0.5")

	// Touched within the keep-alive window, so even a zero max age keeps it
	if !m.Touch(sess.ID) {
		t.Fatal("touch failed")
	}
	m.CleanupOldSessions(0)
	if _, ok := m.Get(sess.ID); !ok {
		t.Error("recently touched session must survive cleanup")
	}
}

func TestCloseUnknownSession(t *testing.T) {
	m := newTestManager(t, 4)
	if m.Close("nope") {
		t.Error("closing an unknown session must report false")
	}
	if m.Touch("nope") {
		t.Error("touching an unknown session must report false")
	}
	if err := m.Save(context.Background(), "nope", "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("save on unknown session = %v, want ErrSessionNotFound", err)
	}
}

func TestDocumentMsgpackRoundTrip(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()

	sess, _ := m.Open(ctx, "10.0.0.5")
	defer m.Close(sess.ID)

	d, _ := m.Doc(sess.ID)
	d.AddText()

	data, ok, err := m.DocumentMsgpack(sess.ID)
	if err != nil || !ok {
		t.Fatalf("msgpack failed: ok=%v err=%v", ok, err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty msgpack payload")
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	m := newTestManager(t, 4)
	ctx := context.Background()
	sess, _ := m.Open(ctx, "10.0.0.5")
	defer m.Close(sess.ID)

	got, ok := m.Get(sess.ID)
	if !ok {
		t.Fatal("session not found")
	}
	got.Variant = "scratch"
	got.Loaded = true

	again, _ := m.Get(sess.ID)
	if again.Variant != models.DefaultVariant {
		t.Errorf("variant = %q, mutation of a returned copy leaked into the manager", again.Variant)
	}
}
