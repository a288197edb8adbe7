package models

// LabelDocument is the full set of elements describing one printable layout.
// This is also the at-rest JSON shape: four flat sequences, one level deep.
// Insertion order is preserved and defines the default paint order
// (text < value < icon < barcode, then by Sira within barcodes).
type LabelDocument struct {
	TextItems    []TextElement    `json:"textItems"`
	ValueItems   []ValueElement   `json:"valueItems"`
	IconItems    []IconElement    `json:"iconItems"`
	BarcodeItems []BarcodeElement `json:"barcodeItems"`
}

// EmptyDocument returns a document with all four collections allocated empty,
// so it serializes as [] rather than null.
func EmptyDocument() LabelDocument {
	return LabelDocument{
		TextItems:    []TextElement{},
		ValueItems:   []ValueElement{},
		IconItems:    []IconElement{},
		BarcodeItems: []BarcodeElement{},
	}
}

// IsEmpty reports whether no elements exist in any collection.
func (d LabelDocument) IsEmpty() bool {
	return len(d.TextItems) == 0 && len(d.ValueItems) == 0 &&
		len(d.IconItems) == 0 && len(d.BarcodeItems) == 0
}

// Clone returns a deep copy of the document.
func (d LabelDocument) Clone() LabelDocument {
	out := LabelDocument{
		TextItems:    make([]TextElement, len(d.TextItems)),
		ValueItems:   make([]ValueElement, len(d.ValueItems)),
		IconItems:    make([]IconElement, len(d.IconItems)),
		BarcodeItems: make([]BarcodeElement, len(d.BarcodeItems)),
	}
	copy(out.TextItems, d.TextItems)
	copy(out.ValueItems, d.ValueItems)
	copy(out.IconItems, d.IconItems)
	copy(out.BarcodeItems, d.BarcodeItems)
	return out
}

// MaxTextID returns the highest text element id, or 0 when empty.
func (d LabelDocument) MaxTextID() int {
	max := 0
	for _, e := range d.TextItems {
		if e.ID > max {
			max = e.ID
		}
	}
	return max
}

// MaxValueID returns the highest value element id, or 0 when empty.
func (d LabelDocument) MaxValueID() int {
	max := 0
	for _, e := range d.ValueItems {
		if e.ID > max {
			max = e.ID
		}
	}
	return max
}

// MaxIconID returns the highest icon element id, or 0 when empty.
func (d LabelDocument) MaxIconID() int {
	max := 0
	for _, e := range d.IconItems {
		if e.ID > max {
			max = e.ID
		}
	}
	return max
}

// MaxBarcodeID returns the highest barcode element id, or 0 when empty.
func (d LabelDocument) MaxBarcodeID() int {
	max := 0
	for _, e := range d.BarcodeItems {
		if e.ID > max {
			max = e.ID
		}
	}
	return max
}

// Normalize allocates any nil collection so a document deserialized from
// JSON with missing keys round-trips to the empty shape.
func (d *LabelDocument) Normalize() {
	if d.TextItems == nil {
		d.TextItems = []TextElement{}
	}
	if d.ValueItems == nil {
		d.ValueItems = []ValueElement{}
	}
	if d.IconItems == nil {
		d.IconItems = []IconElement{}
	}
	if d.BarcodeItems == nil {
		d.BarcodeItems = []BarcodeElement{}
	}
}
