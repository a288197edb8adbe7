// Package render holds the abstract contracts for the external render and
// print collaborators, plus their HTTP client implementations. Rendering a
// preview has no persistence side effect: persisting a variant is an explicit
// settings-store operation.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/label-designer/backend/internal/models"
)

// Renderer computes a displayable raster preview for a label document.
type Renderer interface {
	Render(ctx context.Context, doc models.LabelDocument, deviceID, variant string) ([]byte, error)
}

// PrintService dispatches a previously saved variant to a physical device.
// Retry policy, if any, belongs to the print transport, not the caller.
type PrintService interface {
	Print(ctx context.Context, deviceID, variant string) error
}

// Client talks to the render/generation service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an HTTP client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

type renderRequest struct {
	IP   string `json:"ip"`
	Name string `json:"name"`
	models.LabelDocument
}

// Render posts the document to the render service and returns the preview
// image bytes.
func (c *Client) Render(ctx context.Context, doc models.LabelDocument, deviceID, variant string) ([]byte, error) {
	body, err := json.Marshal(renderRequest{IP: deviceID, Name: variant, LabelDocument: doc})
	if err != nil {
		return nil, fmt.Errorf("encoding render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling render service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	preview, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading preview: %w", err)
	}
	return preview, nil
}

type printRequest struct {
	IP   string `json:"ip"`
	Name string `json:"name"`
}

// Print asks the print service to emit the saved variant to the device.
func (c *Client) Print(ctx context.Context, deviceID, variant string) error {
	body, err := json.Marshal(printRequest{IP: deviceID, Name: variant})
	if err != nil {
		return fmt.Errorf("encoding print request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling print service: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("print service returned status %d", resp.StatusCode)
	}
	return nil
}
