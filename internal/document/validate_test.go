package document

import (
	"strings"
	"testing"

	"github.com/label-designer/backend/internal/models"
)

func TestValidateBarcodeData(t *testing.T) {
	tests := []struct {
		name    string
		format  models.BarcodeFormat
		data    string
		wantErr bool
	}{
		{"code128 printable ascii", models.BarcodeCode128, "SN-0042/B", false},
		{"code128 rejects non-ascii", models.BarcodeCode128, "über", true},
		{"code128 rejects control chars", models.BarcodeCode128, "a\tb", true},
		{"code39 charset", models.BarcodeCode39, "ABC-123 .$/+%", false},
		{"code39 lowercase accepted via uppercase fold", models.BarcodeCode39, "abc123", false},
		{"code39 rejects comma", models.BarcodeCode39, "A,B", true},
		{"ean13 12 digits", models.BarcodeEAN13, "400638133393", false},
		{"ean13 13 digits valid checksum", models.BarcodeEAN13, "4006381333931", false},
		{"ean13 bad checksum", models.BarcodeEAN13, "4006381333932", true},
		{"ean13 wrong length", models.BarcodeEAN13, "1234", true},
		{"ean13 non-digit", models.BarcodeEAN13, "40063813339x1", true},
		{"qr encodable", models.BarcodeQR, "https://example.com/part/88", false},
		{"qr over capacity", models.BarcodeQR, strings.Repeat("x", 8000), true},
		{"unknown format", models.BarcodeFormat("upc"), "123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBarcodeData(tt.format, tt.data)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %s %q, got nil", tt.format, tt.data)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %s %q: %v", tt.format, tt.data, err)
			}
		})
	}
}
