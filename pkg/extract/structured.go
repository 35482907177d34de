package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pocketpause/pausecore/pkg/product"
)

const schemaOrgPrefix = "https://schema.org/"

// titleSuffixRe splits "Product Name | Some Shop" style titles on the first
// separator occurrence.
var titleSuffixRe = regexp.MustCompile(`\s+[|\-–—]\s+`)

// FromStructured extracts product data from JSON-LD blocks first, then fills
// remaining gaps from Open Graph meta tags. JSON-LD always takes priority.
func FromStructured(doc *goquery.Document, baseURL string) product.ProductInfo {
	info := fromJSONLD(doc, baseURL)
	info.Merge(fromOpenGraph(doc, baseURL))
	return info
}

// fromJSONLD scans every application/ld+json script for a schema.org Product
// node. Malformed JSON is common in the wild and skipped silently.
func fromJSONLD(doc *goquery.Document, baseURL string) product.ProductInfo {
	var info product.ProductInfo

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" || !gjson.Valid(raw) {
			return true
		}
		node, ok := findProductNode(gjson.Parse(raw))
		if !ok {
			return true
		}
		info = mapProductNode(node, baseURL)
		return info.IsEmpty() // stop on the first node that yielded data
	})

	return info
}

// findProductNode locates a Product object in a JSON-LD document: directly,
// as an element of a top-level array, or inside an @graph array.
func findProductNode(root gjson.Result) (gjson.Result, bool) {
	if root.IsArray() {
		for _, el := range root.Array() {
			if node, ok := findProductNode(el); ok {
				return node, true
			}
		}
		return gjson.Result{}, false
	}

	if isProductType(root.Get("@type")) {
		return root, true
	}
	if graph := root.Get("@graph"); graph.IsArray() {
		for _, el := range graph.Array() {
			if isProductType(el.Get("@type")) {
				return el, true
			}
		}
	}
	return gjson.Result{}, false
}

// isProductType accepts "@type": "Product" and "@type": ["Product", ...].
func isProductType(t gjson.Result) bool {
	if t.Type == gjson.String {
		return strings.EqualFold(t.Str, "Product")
	}
	if t.IsArray() {
		for _, el := range t.Array() {
			if strings.EqualFold(el.Str, "Product") {
				return true
			}
		}
	}
	return false
}

func mapProductNode(node gjson.Result, baseURL string) product.ProductInfo {
	info := product.ProductInfo{
		ItemName:    strings.TrimSpace(node.Get("name").Str),
		Description: strings.TrimSpace(node.Get("description").Str),
	}

	if brand := node.Get("brand.name"); brand.Str != "" {
		info.Brand = strings.TrimSpace(brand.Str)
	} else if brand := node.Get("brand"); brand.Type == gjson.String {
		info.Brand = strings.TrimSpace(brand.Str)
	}

	offer := firstOffer(node.Get("offers"))
	if offer.Exists() {
		if price := offer.Get("price"); price.Exists() {
			info.Price = CleanPrice(price.String())
		}
		info.PriceCurrency = strings.TrimSpace(offer.Get("priceCurrency").Str)
		if avail := offer.Get("availability").Str; avail != "" {
			info.Availability = strings.TrimPrefix(avail, schemaOrgPrefix)
		}
	}

	if img := imageFromNode(node.Get("image")); img != "" {
		info.ImageURL = resolveURL(baseURL, img)
	}
	if canonical := node.Get("url").Str; canonical != "" {
		info.CanonicalURL = resolveURL(baseURL, canonical)
	}

	return info
}

// firstOffer unwraps offers written as an object, an array, or an
// AggregateOffer with nested offers.
func firstOffer(offers gjson.Result) gjson.Result {
	if offers.IsArray() {
		arr := offers.Array()
		if len(arr) == 0 {
			return gjson.Result{}
		}
		return arr[0]
	}
	if nested := offers.Get("offers"); nested.IsArray() {
		arr := nested.Array()
		if len(arr) > 0 {
			return arr[0]
		}
	}
	return offers
}

// imageFromNode handles image as a string, an {url} object, or an array of
// either, taking the first usable value.
func imageFromNode(img gjson.Result) string {
	switch {
	case img.Type == gjson.String:
		return img.Str
	case img.IsArray():
		for _, el := range img.Array() {
			if v := imageFromNode(el); v != "" {
				return v
			}
		}
	case img.IsObject():
		return img.Get("url").Str
	}
	return ""
}

// fromOpenGraph reads og:* and product:* meta tags. The caller merges this
// under JSON-LD so it only ever fills gaps.
func fromOpenGraph(doc *goquery.Document, baseURL string) product.ProductInfo {
	var info product.ProductInfo

	meta := func(property string) string {
		val, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
		return strings.TrimSpace(val)
	}

	if title := meta("og:title"); title != "" {
		info.ItemName = StripTitleSuffix(title)
	}
	if img := meta("og:image"); img != "" {
		info.ImageURL = resolveURL(baseURL, img)
	}
	if amount := meta("product:price:amount"); amount != "" {
		info.Price = CleanPrice(amount)
		info.PriceCurrency = meta("product:price:currency")
	}
	info.StoreName = meta("og:site_name")
	info.Description = meta("og:description")
	if canonical := meta("og:url"); canonical != "" {
		info.CanonicalURL = canonical
	}

	return info
}

// StripTitleSuffix removes trailing " | Site Name" / " - Site Name" noise
// from page titles, splitting on the first separator only.
func StripTitleSuffix(title string) string {
	parts := titleSuffixRe.Split(title, 2)
	return strings.TrimSpace(parts[0])
}
