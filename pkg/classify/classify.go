package classify

import (
	"strings"

	"github.com/pocketpause/pausecore/pkg/urlutil"
)

// Tier picks the extraction strategy for a site before any network round-trip.
type Tier string

const (
	// TierFirecrawl sites return clean structured data through the remote
	// extraction backend; prefer schema extraction there.
	TierFirecrawl Tier = "firecrawl-preferred"
	// TierProblematic sites need JavaScript rendering or block plain
	// fetches; skip the cheap local fetch entirely.
	TierProblematic Tier = "problematic"
	// TierStandard is everything else: local fetch first, fall back later.
	TierStandard Tier = "standard"
)

// Curated domain lists. Matching is substring-based so subdomains and
// country TLD variants ("amazon.co.uk") are caught by one entry.
var firecrawlPreferred = []string{
	"amazon.",
	"etsy.com",
	"ebay.",
	"walmart.com",
	"target.com",
	"bestbuy.com",
	"wayfair.com",
	"homedepot.com",
	"sephora.com",
	"nordstrom.com",
}

var problematic = []string{
	"zara.com",
	"hm.com",
	"shein.com",
	"nike.com",
	"adidas.com",
	"lululemon.com",
	"costco.com",
	"ikea.com",
	"asos.com",
	"uniqlo.com",
	"aliexpress.com",
	"temu.com",
}

// Classify maps a URL's host to a Tier. Unknown or malformed URLs are
// standard; the pipeline will fall back on its own.
func Classify(rawURL string) Tier {
	host := urlutil.Hostname(rawURL)
	if host == "" {
		return TierStandard
	}
	host = strings.ToLower(host)

	for _, d := range problematic {
		if strings.Contains(host, d) {
			return TierProblematic
		}
	}
	for _, d := range firecrawlPreferred {
		if strings.Contains(host, d) {
			return TierFirecrawl
		}
	}
	return TierStandard
}
