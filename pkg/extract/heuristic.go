package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pocketpause/pausecore/pkg/product"
)

// Selectors is an ordered candidate list per field, most specific first.
// The orders below encode empirically tuned knowledge about real storefront
// markup; do not reshuffle them casually.
type Selectors struct {
	Title []string `json:"title"`
	Price []string `json:"price"`
	Image []string `json:"image"`
	Brand []string `json:"brand,omitempty"`
}

// GenericSelectors returns the default candidate lists used when no domain
// rule overrides them.
func GenericSelectors() Selectors {
	return Selectors{
		Title: []string{
			`h1[itemprop="name"]`,
			`h1.product-title`,
			`h1.product-name`,
			`.product-title h1`,
			`[data-testid="product-title"]`,
			`[data-test="product-title"]`,
			`h1.pdp-title`,
			`.product-info h1`,
			`h1`,
		},
		Price: []string{
			`[itemprop="price"]`,
			`.price-sales`,
			`.product-price .price`,
			`.price-current`,
			`[data-testid="product-price"]`,
			`[data-test="product-price"]`,
			`.pdp-price`,
			`span.price`,
			`.price`,
			`.product-price`,
		},
		Image: []string{
			`img[itemprop="image"]`,
			`.product-image img`,
			`.gallery-image img`,
			`[data-testid="product-image"] img`,
			`.pdp-image img`,
			`picture img`,
			`.product-photo img`,
		},
		Brand: []string{
			`[itemprop="brand"]`,
			`.product-brand`,
			`.brand-name`,
			`[data-testid="product-brand"]`,
		},
	}
}

// priceRe matches an optionally currency-prefixed amount with thousands
// separators: "$1,299.99", "49.99", "€30".
var priceRe = regexp.MustCompile(`[$€£¥₹]?(\d+(?:,\d{3})*(?:\.\d{2})?)`)

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

// buyButtonTexts identifies purchase actions for price-by-proximity search.
var buyButtonTexts = []string{"add to cart", "buy now", "add to bag", "purchase"}

// imageFilterDefaults are src substrings that mark non-product images.
var imageFilterDefaults = []string{"icon", "logo", "loading", "placeholder"}

const minTitleLen = 3

// FromHeuristics runs selector-based extraction against a parsed document.
// Each field is attempted independently so a partial result still merges
// under earlier strategies.
func FromHeuristics(doc *goquery.Document, baseURL string, sel Selectors) product.ProductInfo {
	var info product.ProductInfo

	info.ItemName = firstText(doc, sel.Title, func(s string) bool {
		return len(s) > minTitleLen
	})
	if info.ItemName != "" {
		info.ItemName = StripTitleSuffix(info.ItemName)
	}

	if price, currency := priceFromSelectors(doc, sel.Price); price != "" {
		info.Price, info.PriceCurrency = price, currency
	} else if price, currency := priceNearBuyButton(doc); price != "" {
		info.Price, info.PriceCurrency = price, currency
	}

	if img := imageFromSelectors(doc, sel.Image); img != "" {
		info.ImageURL = resolveURL(baseURL, img)
	} else if img := largestImage(doc, imageFilterDefaults); img != "" {
		info.ImageURL = resolveURL(baseURL, img)
	}

	info.Brand = firstText(doc, sel.Brand, func(s string) bool {
		return s != ""
	})

	return info
}

// firstText walks the candidate list in order and returns the first match
// passing the acceptance check.
func firstText(doc *goquery.Document, selectors []string, accept func(string) bool) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if accept(text) {
			return text
		}
	}
	return ""
}

func priceFromSelectors(doc *goquery.Document, selectors []string) (string, string) {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		// itemprop=price pages often carry the amount in a content attr.
		if content, ok := node.Attr("content"); ok {
			if price, currency := MatchPrice(content); price != "" {
				return price, currency
			}
		}
		if price, currency := MatchPrice(node.Text()); price != "" {
			return price, currency
		}
	}
	return "", ""
}

// priceNearBuyButton finds purchase buttons and searches up to three
// ancestor levels for price-like elements. On pages showing several prices
// (list, sale, bundle) the one structurally closest to the purchase action
// is the semantically correct one.
func priceNearBuyButton(doc *goquery.Document) (string, string) {
	var price, currency string

	doc.Find(`button, [role="button"], input[type="submit"], a.btn, a.button`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !isBuyButton(s) {
			return true
		}
		ancestor := s.Parent()
		for level := 0; level < 3 && ancestor.Length() > 0; level++ {
			found := ancestor.Find(`[class*="price"], [data-price], [itemprop="price"]`).First()
			if found.Length() > 0 {
				if p, c := MatchPrice(found.Text()); p != "" {
					price, currency = p, c
					return false
				}
			}
			ancestor = ancestor.Parent()
		}
		return true
	})

	return price, currency
}

func isBuyButton(s *goquery.Selection) bool {
	text := strings.ToLower(strings.TrimSpace(s.Text()))
	for _, t := range buyButtonTexts {
		if strings.Contains(text, t) {
			return true
		}
	}
	class, _ := s.Attr("class")
	dataTest, _ := s.Attr("data-test")
	attrs := strings.ToLower(class + " " + dataTest)
	return strings.Contains(attrs, "add-to-cart") ||
		strings.Contains(attrs, "addtocart") ||
		strings.Contains(attrs, "buy-now")
}

func imageFromSelectors(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if src, ok := node.Attr("src"); ok && src != "" {
			return src
		}
		if src, ok := node.Attr("data-src"); ok && src != "" {
			return src
		}
	}
	return ""
}

// largestImage scans every <img>, filters out icon/logo/placeholder assets
// and anything at or under 100px a side, and keeps the biggest by area.
func largestImage(doc *goquery.Document, filters []string) string {
	var best string
	var bestArea int

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		lower := strings.ToLower(src)
		for _, f := range filters {
			if strings.Contains(lower, f) {
				return
			}
		}
		w := attrInt(s, "width")
		h := attrInt(s, "height")
		if w <= 100 || h <= 100 {
			return
		}
		if area := w * h; area > bestArea {
			bestArea = area
			best = src
		}
	})

	return best
}

func attrInt(s *goquery.Selection, name string) int {
	v, ok := s.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil {
		return 0
	}
	return n
}

// MatchPrice extracts the first currency amount from text and returns the
// cleaned price plus the currency code when a symbol identified it.
func MatchPrice(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	m := priceRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return "", ""
	}
	currency := ""
	if sym := strings.TrimSuffix(m[0], m[1]); sym != "" {
		currency = currencySymbols[sym]
	}
	return CleanPrice(m[1]), currency
}

// CleanPrice strips currency symbols and thousands separators, leaving only
// digits and at most one decimal point.
func CleanPrice(raw string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return strings.TrimSuffix(b.String(), ".")
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
