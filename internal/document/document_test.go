package document

import (
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/label-designer/backend/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestAddAssignsSequentialIDs(t *testing.T) {
	d := New()

	if got := d.AddText().ID; got != 1 {
		t.Errorf("first text id = %d, want 1", got)
	}
	if got := d.AddText().ID; got != 2 {
		t.Errorf("second text id = %d, want 2", got)
	}

	// Each kind counts independently
	if got := d.AddBarcode().ID; got != 1 {
		t.Errorf("first barcode id = %d, want 1", got)
	}
	if got := d.AddIcon().ID; got != 1 {
		t.Errorf("first icon id = %d, want 1", got)
	}
	if got := d.AddValue().ID; got != 1 {
		t.Errorf("first value id = %d, want 1", got)
	}
}

func TestIDsNeverReusedAfterDelete(t *testing.T) {
	d := New()

	d.AddBarcode() // id 1
	d.AddBarcode() // id 2
	d.AddBarcode() // id 3

	if !d.DeleteBarcode(2) {
		t.Fatal("expected delete of barcode 2 to succeed")
	}

	el := d.AddBarcode()
	if el.ID != 4 {
		t.Errorf("barcode id after delete = %d, want 4", el.ID)
	}

	snap := d.Snapshot()
	ids := make([]int, 0, len(snap.BarcodeItems))
	for _, b := range snap.BarcodeItems {
		ids = append(ids, b.ID)
	}
	want := []int{1, 3, 4}
	if len(ids) != len(want) {
		t.Fatalf("barcode ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("barcode ids = %v, want %v", ids, want)
		}
	}
}

func TestAddDefaults(t *testing.T) {
	d := New()

	text := d.AddText()
	if text.FontSize != models.DefaultFontSize || text.FontFamily != models.DefaultFontFamily {
		t.Errorf("text defaults = %d/%s", text.FontSize, text.FontFamily)
	}

	bc := d.AddBarcode()
	if bc.Format != models.BarcodeCode128 {
		t.Errorf("barcode default format = %s, want code128", bc.Format)
	}
	if bc.Sira != bc.ID {
		t.Errorf("barcode sira = %d, want element id %d", bc.Sira, bc.ID)
	}
	if bc.Width < 1 || bc.Height < 1 {
		t.Errorf("barcode default size %dx%d must be >= 1", bc.Width, bc.Height)
	}
	if bc.TextPosition != models.TextBelow {
		t.Errorf("barcode default text position = %s, want below", bc.TextPosition)
	}

	val := d.AddValue()
	if val.Type != models.ValueTypeText {
		t.Errorf("value default type = %s, want text", val.Type)
	}

	icon := d.AddIcon()
	if icon.Width != 0 || icon.Height != 0 {
		t.Errorf("icon default size = %dx%d, want 0x0 (intrinsic)", icon.Width, icon.Height)
	}
}

func TestUpdateTextClampsAndIgnores(t *testing.T) {
	d := New()
	el := d.AddText()

	ok := d.UpdateText(el.ID, TextUpdate{
		Content:    strPtr("PART-88"),
		X:          intPtr(-10),
		FontSize:   intPtr(200),
		FontFamily: strPtr("Wingdings"),
		Rotation:   intPtr(45),
	})
	if !ok {
		t.Fatal("expected update to apply")
	}

	got := d.Snapshot().TextItems[0]
	if got.Content != "PART-88" {
		t.Errorf("content = %q", got.Content)
	}
	if got.X != 0 {
		t.Errorf("negative x must clamp to 0, got %d", got.X)
	}
	if got.FontSize != models.MaxFontSize {
		t.Errorf("font size must clamp to %d, got %d", models.MaxFontSize, got.FontSize)
	}
	if got.FontFamily != models.DefaultFontFamily {
		t.Errorf("unknown font family must be ignored, got %q", got.FontFamily)
	}
	if got.Rotation != models.Rotation0 {
		t.Errorf("invalid rotation must be ignored, got %d", got.Rotation)
	}
}

func TestUpdateAbsentFieldsUnchanged(t *testing.T) {
	d := New()
	el := d.AddText()
	d.UpdateText(el.ID, TextUpdate{Content: strPtr("keep"), X: intPtr(40)})

	// A second update naming only Y must not disturb content or X
	d.UpdateText(el.ID, TextUpdate{Y: intPtr(9)})

	got := d.Snapshot().TextItems[0]
	if got.Content != "keep" || got.X != 40 || got.Y != 9 {
		t.Errorf("got content=%q x=%d y=%d, want keep/40/9", got.Content, got.X, got.Y)
	}
}

func TestUpdateMissingIDReportsFalse(t *testing.T) {
	d := New()
	d.AddText()

	before := d.Revision()
	if d.UpdateText(99, TextUpdate{Content: strPtr("x")}) {
		t.Error("update of missing id must report false")
	}
	if d.Revision() != before {
		t.Error("failed update must not bump the revision")
	}
	if d.DeleteText(99) {
		t.Error("delete of missing id must report false")
	}
}

func TestUpdateBarcodeRejectsBadData(t *testing.T) {
	d := New()
	el := d.AddBarcode()

	ok, err := d.UpdateBarcode(el.ID, BarcodeUpdate{
		Format: strPtr("ean13"),
		Data:   strPtr("not-digits"),
	})
	if err == nil {
		t.Fatal("expected validation error for non-digit ean13 data")
	}
	if ok {
		t.Error("rejected update must not report applied")
	}

	// The element is untouched, including the format field
	got := d.Snapshot().BarcodeItems[0]
	if got.Format != models.BarcodeCode128 || got.Data != "" {
		t.Errorf("rejected update leaked: format=%s data=%q", got.Format, got.Data)
	}

	ok, err = d.UpdateBarcode(el.ID, BarcodeUpdate{
		Format: strPtr("ean13"),
		Data:   strPtr("4006381333931"),
	})
	if err != nil || !ok {
		t.Fatalf("valid ean13 update failed: ok=%v err=%v", ok, err)
	}
}

func TestUpdateValueKeepsInactiveRepresentation(t *testing.T) {
	d := New()
	el := d.AddValue()

	d.UpdateValue(el.ID, ValueUpdate{Content: strPtr("lot 42"), ValueID: strPtr("station.lot")})
	d.UpdateValue(el.ID, ValueUpdate{Type: strPtr("image")})

	got := d.Snapshot().ValueItems[0]
	if got.Type != models.ValueTypeImage {
		t.Errorf("type = %s, want image", got.Type)
	}
	if got.Content != "lot 42" {
		t.Error("switching type must not clear the text representation")
	}

	d.UpdateValue(el.ID, ValueUpdate{Type: strPtr("text")})
	if d.Snapshot().ValueItems[0].Content != "lot 42" {
		t.Error("toggling back to text must restore the original content")
	}
}

func TestReplaceAllRestartsCounters(t *testing.T) {
	d := New()
	d.AddText()

	loaded := models.EmptyDocument()
	loaded.TextItems = []models.TextElement{{ID: 5, Content: "loaded"}}
	loaded.BarcodeItems = []models.BarcodeElement{{ID: 9, Sira: 1, Format: models.BarcodeCode128}}
	d.ReplaceAll(loaded)

	if got := d.AddText().ID; got != 6 {
		t.Errorf("text id after load = %d, want 6", got)
	}
	if got := d.AddBarcode().ID; got != 10 {
		t.Errorf("barcode id after load = %d, want 10", got)
	}
	if got := d.AddIcon().ID; got != 1 {
		t.Errorf("icon id after load = %d, want 1", got)
	}
}

func TestOnChangeFiresPerMutation(t *testing.T) {
	d := New()
	var fired atomic.Int64
	d.SetOnChange(func() { fired.Add(1) })

	el := d.AddText()
	d.UpdateText(el.ID, TextUpdate{Content: strPtr("a")})
	d.DeleteText(el.ID)
	d.DeleteText(el.ID) // no-op, must not fire

	if got := fired.Load(); got != 3 {
		t.Errorf("onChange fired %d times, want 3", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	d := New()
	el := d.AddText()

	snap := d.Snapshot()
	snap.TextItems[0].Content = "mutated copy"

	if d.Snapshot().TextItems[0].Content != "" {
		t.Error("mutating a snapshot leaked into the document")
	}
	_ = el
}

func TestAddDeleteRestoresCollections(t *testing.T) {
	tests := []struct {
		kind   string
		add    func(d *Document) int
		delete func(d *Document, id int) bool
	}{
		{"text", func(d *Document) int { return d.AddText().ID },
			func(d *Document, id int) bool { return d.DeleteText(id) }},
		{"value", func(d *Document) int { return d.AddValue().ID },
			func(d *Document, id int) bool { return d.DeleteValue(id) }},
		{"icon", func(d *Document) int { return d.AddIcon().ID },
			func(d *Document, id int) bool { return d.DeleteIcon(id) }},
		{"barcode", func(d *Document) int { return d.AddBarcode().ID },
			func(d *Document, id int) bool { return d.DeleteBarcode(id) }},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			d := New()
			// Pre-populate every collection so the restore check catches
			// a delete that touches the wrong slice.
			d.AddText()
			d.AddValue()
			d.AddIcon()
			d.AddBarcode()
			before := d.Snapshot()

			id := tt.add(d)
			if !tt.delete(d, id) {
				t.Fatalf("delete %s %d reported false", tt.kind, id)
			}
			after := d.Snapshot()
			if !reflect.DeepEqual(before, after) {
				t.Errorf("add+delete did not restore document:\nbefore %+v\nafter  %+v", before, after)
			}
		})
	}
}

func TestUpdateIconClamps(t *testing.T) {
	d := New()
	el := d.AddIcon()

	if !d.UpdateIcon(el.ID, IconUpdate{
		X:      intPtr(-15),
		Y:      intPtr(20),
		Width:  intPtr(-4),
		Height: intPtr(64),
	}) {
		t.Fatal("update reported not applied")
	}

	got := d.Snapshot().IconItems[0]
	if got.X != 0 || got.Y != 20 {
		t.Errorf("position = (%d,%d), want (0,20)", got.X, got.Y)
	}
	if got.Width != 0 || got.Height != 64 {
		t.Errorf("size = %dx%d, want 0x64", got.Width, got.Height)
	}
}

func TestUpdateBarcodeFoldsCode39(t *testing.T) {
	d := New()
	el := d.AddBarcode()

	ok, err := d.UpdateBarcode(el.ID, BarcodeUpdate{
		Format: strPtr("code39"),
		Data:   strPtr("lot-7 b"),
	})
	if err != nil || !ok {
		t.Fatalf("code39 update failed: ok=%v err=%v", ok, err)
	}

	if got := d.Snapshot().BarcodeItems[0].Data; got != "LOT-7 B" {
		t.Errorf("stored data = %q, want folded %q", got, "LOT-7 B")
	}
}
