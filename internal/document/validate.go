package document

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/label-designer/backend/internal/models"
)

const code39Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-. $/+%"

// ValidateBarcodeData checks that data is encodable in the given symbology.
// Stored barcode data always passes this check, so the render service never
// receives payloads it cannot draw.
func ValidateBarcodeData(format models.BarcodeFormat, data string) error {
	switch format {
	case models.BarcodeCode128:
		for _, r := range data {
			if r < 32 || r > 126 {
				return fmt.Errorf("code128 data contains non-ASCII character %q", r)
			}
		}
		return nil
	case models.BarcodeCode39:
		for _, r := range strings.ToUpper(data) {
			if !strings.ContainsRune(code39Charset, r) {
				return fmt.Errorf("code39 data contains unsupported character %q", r)
			}
		}
		return nil
	case models.BarcodeEAN13:
		return validateEAN13(data)
	case models.BarcodeQR:
		// Capacity probe only; the generated matrix is discarded.
		if _, err := qrcode.New(data, qrcode.Medium); err != nil {
			return fmt.Errorf("qr data not encodable: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported barcode format %q", format)
	}
}

// CanonicalBarcodeData folds data to the form it is stored in. Code 39
// encodes uppercase letters only, so lowercase input is folded before
// storage and the stored data stays encodable as-is.
func CanonicalBarcodeData(format models.BarcodeFormat, data string) string {
	if format == models.BarcodeCode39 {
		return strings.ToUpper(data)
	}
	return data
}

func validateEAN13(data string) error {
	if len(data) != 12 && len(data) != 13 {
		return fmt.Errorf("ean13 data must be 12 or 13 digits, got %d", len(data))
	}
	for _, r := range data {
		if r < '0' || r > '9' {
			return fmt.Errorf("ean13 data contains non-digit character %q", r)
		}
	}
	if len(data) == 13 {
		sum := 0
		for i := 0; i < 12; i++ {
			d := int(data[i] - '0')
			if i%2 == 1 {
				d *= 3
			}
			sum += d
		}
		check := (10 - sum%10) % 10
		if check != int(data[12]-'0') {
			return fmt.Errorf("ean13 checksum mismatch: expected %d", check)
		}
	}
	return nil
}
