package document

import (
	"github.com/label-designer/backend/internal/models"
)

// Per-kind update commands. Nil fields mean "leave unchanged", which is how
// transient empty numeric inputs stay out of the document: a field with no
// parseable value is simply never sent. Out-of-range values are clamped,
// unknown enum values are ignored, so invalid input never reaches the
// renderer or the settings store.

// TextUpdate mutates a text element.
type TextUpdate struct {
	Content    *string `json:"content"`
	X          *int    `json:"x"`
	Y          *int    `json:"y"`
	FontSize   *int    `json:"fontSize"`
	FontFamily *string `json:"fontFamily"`
	Rotation   *int    `json:"rotation"`
}

func (u TextUpdate) apply(e *models.TextElement) {
	if u.Content != nil {
		e.Content = *u.Content
	}
	if u.X != nil {
		e.X = models.ClampCoord(*u.X)
	}
	if u.Y != nil {
		e.Y = models.ClampCoord(*u.Y)
	}
	if u.FontSize != nil {
		e.FontSize = models.ClampFontSize(*u.FontSize)
	}
	if u.FontFamily != nil && models.ValidFontFamily(*u.FontFamily) {
		e.FontFamily = *u.FontFamily
	}
	if u.Rotation != nil && models.Rotation(*u.Rotation).Valid() {
		e.Rotation = models.Rotation(*u.Rotation)
	}
}

// UpdateText replaces the named fields on the text element with matching id.
// Returns false, without error, when the id is not present.
func (d *Document) UpdateText(id int, u TextUpdate) bool {
	d.mu.Lock()
	updated := false
	for i := range d.doc.TextItems {
		if d.doc.TextItems[i].ID == id {
			el := d.doc.TextItems[i]
			u.apply(&el)
			d.doc.TextItems[i] = el
			updated = true
			break
		}
	}
	var fn func()
	if updated {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return updated
}

// ValueUpdate mutates a value element. Switching Type does not clear the
// inactive representation's fields, so toggling text/image loses no data.
// ImageFile must already be a normalized payload (see imagepayload).
type ValueUpdate struct {
	ValueID     *string `json:"valueId"`
	Type        *string `json:"type"`
	Content     *string `json:"content"`
	X           *int    `json:"x"`
	Y           *int    `json:"y"`
	FontSize    *int    `json:"fontSize"`
	FontFamily  *string `json:"fontFamily"`
	Rotation    *int    `json:"rotation"`
	ImageFile   *string `json:"imageFile"`
	ImageWidth  *int    `json:"imageWidth"`
	ImageHeight *int    `json:"imageHeight"`
}

func (u ValueUpdate) apply(e *models.ValueElement) {
	if u.ValueID != nil {
		e.ValueID = *u.ValueID
	}
	if u.Type != nil && models.ValueType(*u.Type).Valid() {
		e.Type = models.ValueType(*u.Type)
	}
	if u.Content != nil {
		e.Content = *u.Content
	}
	if u.X != nil {
		e.X = models.ClampCoord(*u.X)
	}
	if u.Y != nil {
		e.Y = models.ClampCoord(*u.Y)
	}
	if u.FontSize != nil {
		e.FontSize = models.ClampFontSize(*u.FontSize)
	}
	if u.FontFamily != nil && models.ValidFontFamily(*u.FontFamily) {
		e.FontFamily = *u.FontFamily
	}
	if u.Rotation != nil && models.Rotation(*u.Rotation).Valid() {
		e.Rotation = models.Rotation(*u.Rotation)
	}
	if u.ImageFile != nil {
		e.ImageFile = *u.ImageFile
	}
	if u.ImageWidth != nil {
		e.ImageWidth = models.ClampCoord(*u.ImageWidth)
	}
	if u.ImageHeight != nil {
		e.ImageHeight = models.ClampCoord(*u.ImageHeight)
	}
}

// UpdateValue replaces the named fields on the value element with matching id.
func (d *Document) UpdateValue(id int, u ValueUpdate) bool {
	d.mu.Lock()
	updated := false
	for i := range d.doc.ValueItems {
		if d.doc.ValueItems[i].ID == id {
			el := d.doc.ValueItems[i]
			u.apply(&el)
			d.doc.ValueItems[i] = el
			updated = true
			break
		}
	}
	var fn func()
	if updated {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return updated
}

// IconUpdate mutates an icon element. IconFile must already be a normalized
// payload (see imagepayload). Zero width/height mean intrinsic size.
type IconUpdate struct {
	X        *int    `json:"x"`
	Y        *int    `json:"y"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
	IconFile *string `json:"iconFile"`
}

func (u IconUpdate) apply(e *models.IconElement) {
	if u.X != nil {
		e.X = models.ClampCoord(*u.X)
	}
	if u.Y != nil {
		e.Y = models.ClampCoord(*u.Y)
	}
	if u.Width != nil {
		e.Width = models.ClampCoord(*u.Width)
	}
	if u.Height != nil {
		e.Height = models.ClampCoord(*u.Height)
	}
	if u.IconFile != nil {
		e.IconFile = *u.IconFile
	}
}

// UpdateIcon replaces the named fields on the icon element with matching id.
func (d *Document) UpdateIcon(id int, u IconUpdate) bool {
	d.mu.Lock()
	updated := false
	for i := range d.doc.IconItems {
		if d.doc.IconItems[i].ID == id {
			el := d.doc.IconItems[i]
			u.apply(&el)
			d.doc.IconItems[i] = el
			updated = true
			break
		}
	}
	var fn func()
	if updated {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return updated
}

// BarcodeUpdate mutates a barcode element.
type BarcodeUpdate struct {
	Sira         *int    `json:"sira"`
	X            *int    `json:"x"`
	Y            *int    `json:"y"`
	Width        *int    `json:"width"`
	Height       *int    `json:"height"`
	Format       *string `json:"format"`
	Data         *string `json:"data"`
	FontSize     *int    `json:"fontSize"`
	FontFamily   *string `json:"fontFamily"`
	TextPosition *string `json:"textPosition"`
}

func (u BarcodeUpdate) apply(e *models.BarcodeElement) {
	if u.Sira != nil {
		e.Sira = models.ClampMin(*u.Sira, 1)
	}
	if u.X != nil {
		e.X = models.ClampCoord(*u.X)
	}
	if u.Y != nil {
		e.Y = models.ClampCoord(*u.Y)
	}
	if u.Width != nil {
		e.Width = models.ClampMin(*u.Width, 1)
	}
	if u.Height != nil {
		e.Height = models.ClampMin(*u.Height, 1)
	}
	if u.Format != nil && models.BarcodeFormat(*u.Format).Valid() {
		e.Format = models.BarcodeFormat(*u.Format)
	}
	if u.Data != nil {
		e.Data = *u.Data
	}
	if u.FontSize != nil {
		e.FontSize = models.ClampFontSize(*u.FontSize)
	}
	if u.FontFamily != nil && models.ValidFontFamily(*u.FontFamily) {
		e.FontFamily = *u.FontFamily
	}
	if u.TextPosition != nil && models.TextPosition(*u.TextPosition).Valid() {
		e.TextPosition = models.TextPosition(*u.TextPosition)
	}
}

// UpdateBarcode replaces the named fields on the barcode element with
// matching id. Non-empty data is validated against the effective symbology
// before anything is mutated; invalid data rejects the whole update.
// A missing id returns (false, nil).
func (d *Document) UpdateBarcode(id int, u BarcodeUpdate) (bool, error) {
	d.mu.Lock()
	updated := false
	var verr error
	for i := range d.doc.BarcodeItems {
		if d.doc.BarcodeItems[i].ID == id {
			el := d.doc.BarcodeItems[i]
			u.apply(&el)
			if el.Data != "" {
				if err := ValidateBarcodeData(el.Format, el.Data); err != nil {
					verr = err
					break
				}
				el.Data = CanonicalBarcodeData(el.Format, el.Data)
			}
			d.doc.BarcodeItems[i] = el
			updated = true
			break
		}
	}
	var fn func()
	if updated {
		fn = d.changed()
	}
	d.mu.Unlock()
	notify(fn)
	return updated, verr
}
