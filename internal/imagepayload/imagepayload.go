// Package imagepayload validates and normalizes binary-as-text image payloads
// so they can travel inside a JSON label document without a separate upload
// step. Every accepted payload is decoded, bounded to the label canvas, and
// re-encoded as a PNG data URI.
package imagepayload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const dataURIPrefix = "data:"

// Normalize accepts a data URI or bare base64 image payload of at most
// maxBytes decoded bytes, verifies it decodes as an image, scales it down to
// fit maxWidth x maxHeight when larger, and returns a PNG data URI.
// Undecodable or oversized payloads are rejected.
func Normalize(payload string, maxBytes int64, maxWidth, maxHeight int) (string, error) {
	if payload == "" {
		return "", nil
	}

	raw, err := decodePayload(payload)
	if err != nil {
		return "", err
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return "", fmt.Errorf("image payload is %d bytes, limit is %d", len(raw), maxBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decoding image payload: %w", err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && maxHeight > 0 &&
		(bounds.Dx() > maxWidth || bounds.Dy() > maxHeight) {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding image payload: %w", err)
	}

	return dataURIPrefix + "image/png;base64," +
		base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode returns the raw image bytes of a normalized payload.
func Decode(payload string) ([]byte, error) {
	return decodePayload(payload)
}

func decodePayload(payload string) ([]byte, error) {
	data := payload
	if strings.HasPrefix(payload, dataURIPrefix) {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URI: missing comma")
		}
		meta := payload[len(dataURIPrefix):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("unsupported data URI encoding %q", meta)
		}
		data = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return raw, nil
}
