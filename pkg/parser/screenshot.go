package parser

import (
	"context"
	"strings"

	"github.com/pocketpause/pausecore/pkg/extract"
	"github.com/pocketpause/pausecore/pkg/fetch"
	"github.com/pocketpause/pausecore/pkg/product"
	"github.com/pocketpause/pausecore/pkg/urlutil"
)

// ShouldUseScreenshotFallback decides whether the visual last resort fires:
// only when every prior attempt stayed under the confidence bar with no
// usable field (name, price, or image) anywhere.
func ShouldUseScreenshotFallback(attempts []*product.ParseResult) bool {
	for _, a := range attempts {
		if a == nil {
			continue
		}
		if a.Confidence >= product.MinConfidence {
			return false
		}
		if a.Data.ItemName != "" || a.Data.Price != "" || a.Data.ImageURL != "" {
			return false
		}
	}
	return true
}

// screenshotFallback captures the page visually and derives a best-effort
// title, guaranteeing something displayable even for fully blocked pages.
// Returns nil only when no remote backend is configured or the capture
// itself failed; the URL-derived fallback upstream still applies then.
func (p *Parser) screenshotFallback(ctx context.Context, url string) *product.ParseResult {
	if p.remote == nil {
		return nil
	}
	resp, err := p.remote.Screenshot(ctx, url)
	if err != nil {
		p.log.Debugf("screenshot fallback failed for %s: %v", url, err)
		return nil
	}

	title := ""
	if resp.HTML != "" {
		if t, ok := fetch.HTMLTitle(resp.HTML); ok && strings.TrimSpace(t) != "" {
			title = extract.StripTitleSuffix(strings.TrimSpace(t))
		} else if h1, ok := fetch.FirstH1(resp.HTML); ok && strings.TrimSpace(h1) != "" {
			title = strings.TrimSpace(h1)
		}
	}
	if title == "" && resp.Markdown != "" {
		title = titleFromMarkdown(resp.Markdown)
	}
	if title == "" {
		title = urlutil.TitleFromPath(url)
	}

	info := product.ProductInfo{
		ItemName: title,
		ImageURL: resp.Screenshot,
	}
	return &product.ParseResult{
		Success:    title != "",
		Data:       info,
		Method:     "screenshot",
		Confidence: product.Score(info),
	}
}

// titleFromMarkdown takes the first "# " heading from rendered markdown.
func titleFromMarkdown(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
