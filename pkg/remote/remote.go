// Package remote talks to the rendering/extraction backend (a Firecrawl-style
// API behind a local proxy). Any service honoring the same request/response
// contract is substitutable.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// Request modes.
const (
	ModeCrawl      = "crawl"
	ModeExtract    = "extract"
	ModeScreenshot = "screenshot"
)

// Timeout is the client-side budget for one backend call. On expiry the
// pipeline falls through to the next strategy; it never blocks the caller.
const Timeout = 8 * time.Second

// extractSchema constrains the backend's schema extraction mode to the
// product fields the pipeline understands.
var extractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"itemName":     map[string]any{"type": "string"},
		"price":        map[string]any{"type": "string"},
		"currency":     map[string]any{"type": "string"},
		"brand":        map[string]any{"type": "string"},
		"imageUrl":     map[string]any{"type": "string"},
		"availability": map[string]any{"type": "string"},
	},
}

const extractPrompt = "Extract the product name, current price, currency, brand, " +
	"main product image URL and availability from this e-commerce page. " +
	"Use the sale price when both a list and a sale price are shown."

// Response is the parsed backend reply. Extracted is raw JSON for the
// caller to map; empty when the mode did not request extraction.
type Response struct {
	Success    bool
	HTML       string
	Markdown   string
	Extracted  gjson.Result
	Screenshot string
	Error      string
}

// Client posts to the backend endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *retryablehttp.Client
}

// New builds a backend client. Retries are disabled: the orchestrator's
// fallback chain is the retry policy.
func New(endpoint, apiKey, proxy string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("remote: endpoint is required")
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.HTTPClient.Timeout = Timeout

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("remote: invalid proxy URL: %w", err)
		}
		rc.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &Client{endpoint: endpoint, apiKey: apiKey, http: rc}, nil
}

// Crawl asks the backend to render the target and return html/markdown.
func (c *Client) Crawl(ctx context.Context, targetURL string) (*Response, error) {
	return c.do(ctx, map[string]any{
		"url":  targetURL,
		"mode": ModeCrawl,
	})
}

// Extract asks the backend for a schema-constrained extraction object,
// skipping local DOM parsing entirely.
func (c *Client) Extract(ctx context.Context, targetURL string) (*Response, error) {
	return c.do(ctx, map[string]any{
		"url":    targetURL,
		"mode":   ModeExtract,
		"schema": extractSchema,
		"prompt": extractPrompt,
	})
}

// Screenshot captures the rendered page; the backend may also attach
// html/markdown for best-effort title extraction.
func (c *Client) Screenshot(ctx context.Context, targetURL string) (*Response, error) {
	return c.do(ctx, map[string]any{
		"url":  targetURL,
		"mode": ModeScreenshot,
		"options": map[string]any{
			"fullPage": false,
		},
	})
}

func (c *Client) do(ctx context.Context, payload map[string]any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: backend returned status %d", resp.StatusCode)
	}

	parsed := gjson.ParseBytes(raw)
	out := &Response{
		Success:    parsed.Get("success").Bool(),
		HTML:       parsed.Get("html").Str,
		Markdown:   parsed.Get("markdown").Str,
		Extracted:  parsed.Get("extracted"),
		Screenshot: parsed.Get("screenshot").Str,
		Error:      parsed.Get("error").Str,
	}
	if !out.Success {
		if out.Error != "" {
			return nil, fmt.Errorf("remote: %s", out.Error)
		}
		return nil, fmt.Errorf("remote: backend reported failure")
	}
	return out, nil
}
