package urlutil

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// trackingParams is the deny-list of query parameters stripped during
// normalization. utm_* is handled as a prefix match.
var trackingParams = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"ref":      true,
	"referrer": true,
	"source":   true,
	"campaign": true,
	"_ga":      true,
	"_gl":      true,
	"mc_cid":   true,
	"mc_eid":   true,
	"affid":    true,
	"clickid":  true,
}

// NormalizeURL strips known tracking parameters and the fragment from a URL.
// Malformed input is returned unchanged; this function never fails. Cache
// keys and site classification must both go through it so they agree.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}

// Hostname returns the lowercased host of a URL without the www. prefix,
// or "" when the URL cannot be parsed.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// StoreNameFromURL derives a display-friendly store name from a URL's host.
// "https://www.shop.example.co.uk/item" yields "Example". Falls back to
// "Unknown Store" when no hostname can be extracted.
func StoreNameFromURL(raw string) string {
	host := Hostname(raw)
	if host == "" {
		return "Unknown Store"
	}
	name := host
	if dom, err := publicsuffix.Domain(host); err == nil && dom != "" {
		name = dom
	}
	// Keep only the registrable label: "example.co.uk" -> "example".
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	return titleCase(strings.ReplaceAll(name, "-", " "))
}

// TitleFromPath derives a best-effort item title from the last non-empty
// path segment of a URL, with separators replaced by spaces and each word
// title-cased. Returns "" when the URL has no usable path.
func TitleFromPath(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg == "" {
			continue
		}
		// Drop file extensions and numeric-only IDs, which make poor titles.
		if dot := strings.LastIndex(seg, "."); dot > 0 {
			seg = seg[:dot]
		}
		if isNumeric(seg) {
			continue
		}
		seg = strings.NewReplacer("-", " ", "_", " ", "+", " ", "%20", " ").Replace(seg)
		return titleCase(seg)
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
