package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const (
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"
	defaultTimeout = 8 * time.Second
)

// Page is the outcome of a direct page fetch.
type Page struct {
	StatusCode int
	Body       string
	Title      string
	FinalURL   string
}

// Client fetches product pages directly, without JS rendering. Problematic
// sites should not go through it; the classifier decides that upstream.
type Client struct {
	http *retryablehttp.Client
}

// New builds a fetch client. Retries stay at zero: a failed fetch falls
// through to the next strategy instead of burning the time budget here.
func New(proxy string) (*Client, error) {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.HTTPClient.Timeout = defaultTimeout

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		rc.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &Client{http: rc}, nil
}

// Get fetches a page and extracts its <title>. Non-2xx responses are
// returned as errors so callers treat them as a strategy failure.
func (c *Client) Get(ctx context.Context, pageURL string) (*Page, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Cache-Control", "no-transform")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	page := &Page{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		FinalURL:   resp.Request.URL.String(),
	}
	if title, ok := HTMLTitle(page.Body); ok {
		page.Title = cleanTitle(title)
	}
	return page, nil
}

// HTMLTitle extracts the first <title> text from an HTML document.
func HTMLTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	return traverse(doc, "title")
}

// FirstH1 extracts the first <h1> text from an HTML document.
func FirstH1(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	return traverse(doc, "h1")
}

func traverse(n *html.Node, element string) (string, bool) {
	if n.Type == html.ElementNode && n.Data == element {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result, ok := traverse(c, element); ok {
			return result, ok
		}
	}
	return "", false
}

func cleanTitle(title string) string {
	title = strings.ReplaceAll(title, "\n", "")
	title = strings.ReplaceAll(title, "\r", "")
	title = strings.TrimSpace(title)
	if !utf8.ValidString(title) {
		title = strings.ToValidUTF8(title, "")
	}
	return title
}
