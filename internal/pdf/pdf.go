// Package pdf converts rendered HTML into PDF through the external rendering
// service.
package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generator turns an HTML document into PDF bytes.
type Generator interface {
	Generate(ctx context.Context, html string) ([]byte, error)
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Generator = (*Client)(nil)

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type renderRequest struct {
	HTML   string `json:"html"`
	Format string `json:"format"`
}

// maxPDFSize bounds what we accept from the renderer.
const maxPDFSize = 20 << 20

func (c *Client) Generate(ctx context.Context, html string) ([]byte, error) {
	payload, err := json.Marshal(renderRequest{HTML: html, Format: "A4"})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pdf", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling pdf service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(truncate(body, 512))))
	}
	if len(body) > maxPDFSize {
		return nil, fmt.Errorf("pdf exceeds %d bytes", maxPDFSize)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		return nil, fmt.Errorf("pdf service returned a non-PDF body")
	}
	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
