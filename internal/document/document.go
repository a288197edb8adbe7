// Package document holds the mutable label document model for one designer
// session: identity-stable element collections with per-kind id counters and
// a closed set of per-kind edit operations.
package document

import (
	"sync"

	"github.com/label-designer/backend/internal/models"
)

// Document is the session-scoped mutable label layout. All mutations are
// atomic with respect to each other; concurrent readers get deep snapshots.
// Element ids are assigned by per-kind counters starting at 1 and are never
// reused within a session, even after deletion.
type Document struct {
	mu  sync.Mutex
	doc models.LabelDocument

	nextTextID    int
	nextValueID   int
	nextIconID    int
	nextBarcodeID int

	revision uint64
	onChange func()
}

// New creates an empty document.
func New() *Document {
	return &Document{
		doc:           models.EmptyDocument(),
		nextTextID:    1,
		nextValueID:   1,
		nextIconID:    1,
		nextBarcodeID: 1,
	}
}

// SetOnChange registers a callback invoked after every successful mutation.
// The callback runs outside the document lock.
func (d *Document) SetOnChange(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Snapshot returns a deep copy of the current document.
func (d *Document) Snapshot() models.LabelDocument {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Clone()
}

// Revision returns the mutation counter. It increases by one per mutation.
func (d *Document) Revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revision
}

// IsEmpty reports whether all four collections are empty.
func (d *Document) IsEmpty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.IsEmpty()
}

func (d *Document) changed() func() {
	d.revision++
	return d.onChange
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}

// AddText appends a new text element with kind defaults and returns it.
func (d *Document) AddText() models.TextElement {
	d.mu.Lock()
	el := models.TextElement{
		ID:         d.nextTextID,
		FontSize:   models.DefaultFontSize,
		FontFamily: models.DefaultFontFamily,
		Rotation:   models.Rotation0,
	}
	d.nextTextID++
	d.doc.TextItems = append(d.doc.TextItems, el)
	fn := d.changed()
	d.mu.Unlock()
	notify(fn)
	return el
}

// AddValue appends a new value element with kind defaults and returns it.
func (d *Document) AddValue() models.ValueElement {
	d.mu.Lock()
	el := models.ValueElement{
		ID:         d.nextValueID,
		Type:       models.ValueTypeText,
		FontSize:   models.DefaultFontSize,
		FontFamily: models.DefaultFontFamily,
		Rotation:   models.Rotation0,
	}
	d.nextValueID++
	d.doc.ValueItems = append(d.doc.ValueItems, el)
	fn := d.changed()
	d.mu.Unlock()
	notify(fn)
	return el
}

// AddIcon appends a new icon element and returns it. Width and height start
// at zero, meaning intrinsic image size.
func (d *Document) AddIcon() models.IconElement {
	d.mu.Lock()
	el := models.IconElement{ID: d.nextIconID}
	d.nextIconID++
	d.doc.IconItems = append(d.doc.IconItems, el)
	fn := d.changed()
	d.mu.Unlock()
	notify(fn)
	return el
}

// AddBarcode appends a new barcode element with kind defaults and returns it.
// The draw-order hint starts equal to the element id, which keeps it unique
// and >= 1 without tracking deletions.
func (d *Document) AddBarcode() models.BarcodeElement {
	d.mu.Lock()
	el := models.BarcodeElement{
		ID:           d.nextBarcodeID,
		Sira:         d.nextBarcodeID,
		Width:        2,
		Height:       50,
		Format:       models.BarcodeCode128,
		FontSize:     models.DefaultFontSize,
		FontFamily:   models.DefaultFontFamily,
		TextPosition: models.TextBelow,
	}
	d.nextBarcodeID++
	d.doc.BarcodeItems = append(d.doc.BarcodeItems, el)
	fn := d.changed()
	d.mu.Unlock()
	notify(fn)
	return el
}

// DeleteText removes the text element with the given id. Missing ids are a
// silent no-op: the element may have been deleted by a prior action.
func (d *Document) DeleteText(id int) bool {
	d.mu.Lock()
	removed := false
	for i, e := range d.doc.TextItems {
		if e.ID == id {
			d.doc.TextItems = append(d.doc.TextItems[:i], d.doc.TextItems[i+1:]...)
			removed = true
			break
		}
	}
	var fn func()
	if removed {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return removed
}

// DeleteValue removes the value element with the given id. No-op if absent.
func (d *Document) DeleteValue(id int) bool {
	d.mu.Lock()
	removed := false
	for i, e := range d.doc.ValueItems {
		if e.ID == id {
			d.doc.ValueItems = append(d.doc.ValueItems[:i], d.doc.ValueItems[i+1:]...)
			removed = true
			break
		}
	}
	var fn func()
	if removed {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return removed
}

// DeleteIcon removes the icon element with the given id. No-op if absent.
func (d *Document) DeleteIcon(id int) bool {
	d.mu.Lock()
	removed := false
	for i, e := range d.doc.IconItems {
		if e.ID == id {
			d.doc.IconItems = append(d.doc.IconItems[:i], d.doc.IconItems[i+1:]...)
			removed = true
			break
		}
	}
	var fn func()
	if removed {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return removed
}

// DeleteBarcode removes the barcode element with the given id. No-op if absent.
func (d *Document) DeleteBarcode(id int) bool {
	d.mu.Lock()
	removed := false
	for i, e := range d.doc.BarcodeItems {
		if e.ID == id {
			d.doc.BarcodeItems = append(d.doc.BarcodeItems[:i], d.doc.BarcodeItems[i+1:]...)
			removed = true
			break
		}
	}
	var fn func()
	if removed {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return removed
}

// ReplaceAll swaps all four collections atomically, used only by variant
// loading. Each id counter restarts at max(existing ids)+1 so elements added
// afterwards cannot collide with loaded ids.
func (d *Document) ReplaceAll(doc models.LabelDocument) {
	d.mu.Lock()
	doc.Normalize()
	d.doc = doc.Clone()
	d.nextTextID = d.doc.MaxTextID() + 1
	d.nextValueID = d.doc.MaxValueID() + 1
	d.nextIconID = d.doc.MaxIconID() + 1
	d.nextBarcodeID = d.doc.MaxBarcodeID() + 1
	fn := d.changed()
	d.mu.Unlock()
	notify(fn)
}
