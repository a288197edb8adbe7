package models

import (
	"math"
	"time"
)

// Printer represents a registered label printer and its physical print area.
type Printer struct {
	IP        string    `json:"ip"`
	Name      string    `json:"name"`
	DPI       int       `json:"dpi"`
	WidthMm   float64   `json:"width"`  // print area width in millimeters
	HeightMm  float64   `json:"height"` // print area height in millimeters
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Canvas is the pixel-dimensioned drawing surface derived from a printer's
// physical print area and resolution. It is derived, never stored.
type Canvas struct {
	WidthPx  int `json:"widthPx"`
	HeightPx int `json:"heightPx"`
}

// ToPixels converts a physical length in millimeters to device pixels at the
// given resolution. Rounds half away from zero.
func ToPixels(mm, dpi float64) int {
	return int(math.Round(mm * dpi / 25.4))
}

// CanvasFor derives the pixel canvas for a printer's print area.
func CanvasFor(p Printer) Canvas {
	return Canvas{
		WidthPx:  ToPixels(p.WidthMm, float64(p.DPI)),
		HeightPx: ToPixels(p.HeightMm, float64(p.DPI)),
	}
}
