package models

// Font size bounds shared by text, value and barcode elements.
const (
	MinFontSize     = 8
	MaxFontSize     = 72
	DefaultFontSize = 12
)

// DefaultFontFamily is the font assigned to newly created elements.
const DefaultFontFamily = "Arial"

// FontFamilies lists the fonts the render service can resolve.
var FontFamilies = []string{"Arial", "Times New Roman", "Courier New", "Helvetica"}

// ValidFontFamily reports whether name is a known font family.
func ValidFontFamily(name string) bool {
	for _, f := range FontFamilies {
		if f == name {
			return true
		}
	}
	return false
}

// Rotation is a text rotation in degrees. Only 0, 90 and 270 are printable.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation270 Rotation = 270
)

// Valid reports whether r is one of the printable rotations.
func (r Rotation) Valid() bool {
	return r == Rotation0 || r == Rotation90 || r == Rotation270
}

// ValueType selects the active representation of a value element.
type ValueType string

const (
	ValueTypeText  ValueType = "text"
	ValueTypeImage ValueType = "image"
)

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	return t == ValueTypeText || t == ValueTypeImage
}

// BarcodeFormat identifies the symbology of a barcode element.
type BarcodeFormat string

const (
	BarcodeCode128 BarcodeFormat = "code128"
	BarcodeCode39  BarcodeFormat = "code39"
	BarcodeEAN13   BarcodeFormat = "ean13"
	BarcodeQR      BarcodeFormat = "qr"
)

// Valid reports whether f is a supported symbology.
func (f BarcodeFormat) Valid() bool {
	switch f {
	case BarcodeCode128, BarcodeCode39, BarcodeEAN13, BarcodeQR:
		return true
	}
	return false
}

// TextPosition places the human-readable text relative to the barcode bars.
type TextPosition string

const (
	TextBelow TextPosition = "below"
	TextAbove TextPosition = "above"
	TextLeft  TextPosition = "left"
	TextRight TextPosition = "right"
	TextNone  TextPosition = "none"
)

// Valid reports whether p is a known text position.
func (p TextPosition) Valid() bool {
	switch p {
	case TextBelow, TextAbove, TextLeft, TextRight, TextNone:
		return true
	}
	return false
}

// TextElement is a static text item on the label canvas.
// Empty content is permitted while editing but suppressed from rendering.
type TextElement struct {
	ID         int      `json:"id"`
	Content    string   `json:"content"`
	X          int      `json:"x"`
	Y          int      `json:"y"`
	FontSize   int      `json:"fontSize"`
	FontFamily string   `json:"fontFamily"`
	Rotation   Rotation `json:"rotation"`
}

// ValueElement is a data-bound slot resolved at render time through its
// ValueID. Exactly one representation is active per Type; the inactive
// representation's fields are retained so type toggling loses no data.
type ValueElement struct {
	ID          int       `json:"id"`
	ValueID     string    `json:"valueId"`
	Type        ValueType `json:"type"`
	Content     string    `json:"content,omitempty"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	FontSize    int       `json:"fontSize,omitempty"`
	FontFamily  string    `json:"fontFamily,omitempty"`
	Rotation    Rotation  `json:"rotation,omitempty"`
	ImageFile   string    `json:"imageFile,omitempty"`   // PNG data URI
	ImageWidth  int       `json:"imageWidth,omitempty"`  // 0 = intrinsic
	ImageHeight int       `json:"imageHeight,omitempty"` // 0 = intrinsic
}

// IconElement is an embedded image on the label canvas.
type IconElement struct {
	ID       int    `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`    // 0 = intrinsic
	Height   int    `json:"height"`   // 0 = intrinsic
	IconFile string `json:"iconFile"` // PNG data URI
}

// BarcodeElement is a barcode item on the label canvas.
type BarcodeElement struct {
	ID           int           `json:"id"`
	Sira         int           `json:"sira"` // draw order hint within barcodes, >= 1
	X            int           `json:"x"`
	Y            int           `json:"y"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Format       BarcodeFormat `json:"format"`
	Data         string        `json:"data"`
	FontSize     int           `json:"fontSize"`
	FontFamily   string        `json:"fontFamily"`
	TextPosition TextPosition  `json:"textPosition"`
}

// ClampCoord clamps a canvas coordinate to be non-negative.
func ClampCoord(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ClampFontSize clamps a font size into the printable range.
func ClampFontSize(v int) int {
	if v < MinFontSize {
		return MinFontSize
	}
	if v > MaxFontSize {
		return MaxFontSize
	}
	return v
}

// ClampMin clamps v to be at least min.
func ClampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
