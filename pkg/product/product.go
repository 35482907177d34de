package product

import "strings"

// ProductInfo is the extraction result for a single product page. All fields
// are optional; an empty string means "not determined".
type ProductInfo struct {
	ItemName      string `json:"itemName,omitempty"`
	StoreName     string `json:"storeName,omitempty"`
	Price         string `json:"price,omitempty"`
	PriceCurrency string `json:"priceCurrency,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Availability  string `json:"availability,omitempty"`
	Description   string `json:"description,omitempty"`
	CanonicalURL  string `json:"canonicalUrl,omitempty"`
}

// ParseResult wraps a ProductInfo with orchestration metadata.
type ParseResult struct {
	Success    bool        `json:"success"`
	Data       ProductInfo `json:"data"`
	Method     string      `json:"method"`
	Confidence float64     `json:"confidence"`
	Error      string      `json:"error,omitempty"`
}

// IsEmpty reports whether no field of the result was determined.
func (p ProductInfo) IsEmpty() bool {
	return p.ItemName == "" && p.StoreName == "" && p.Price == "" &&
		p.PriceCurrency == "" && p.ImageURL == "" && p.Brand == "" &&
		p.Availability == "" && p.Description == "" && p.CanonicalURL == ""
}

// Merge copies fields from other into p, but only where p has no value yet.
// Earlier strategies always win per field.
func (p *ProductInfo) Merge(other ProductInfo) {
	if p.ItemName == "" {
		p.ItemName = other.ItemName
	}
	if p.StoreName == "" {
		p.StoreName = other.StoreName
	}
	if p.Price == "" {
		p.Price = other.Price
		if p.PriceCurrency == "" {
			p.PriceCurrency = other.PriceCurrency
		}
	}
	if p.ImageURL == "" {
		p.ImageURL = other.ImageURL
	}
	if p.Brand == "" {
		p.Brand = other.Brand
	}
	if p.Availability == "" {
		p.Availability = other.Availability
	}
	if p.Description == "" {
		p.Description = other.Description
	}
	if p.CanonicalURL == "" {
		p.CanonicalURL = other.CanonicalURL
	}
}

// Confidence weights. These are heuristic priority signals tuned against the
// original pipeline, not calibrated probabilities. Tunable.
const (
	WeightName  = 0.4
	WeightPrice = 0.3
	WeightImage = 0.2
	WeightExtra = 0.1

	// MinConfidence is the "good enough" bar for early exit: an item name
	// plus nothing else still clears it.
	MinConfidence = 0.3
)

// Score computes the confidence for a ProductInfo as a weighted sum of the
// fields that were populated.
func Score(p ProductInfo) float64 {
	var c float64
	if strings.TrimSpace(p.ItemName) != "" {
		c += WeightName
	}
	if p.Price != "" {
		c += WeightPrice
	}
	if p.ImageURL != "" {
		c += WeightImage
	}
	if p.Brand != "" || p.Availability != "" || p.Description != "" {
		c += WeightExtra
	}
	if c > 1 {
		c = 1
	}
	return c
}

// GoodEnough reports whether a result can stop the fallback chain early.
func GoodEnough(r *ParseResult) bool {
	if r == nil {
		return false
	}
	return r.Data.ItemName != "" && r.Confidence >= MinConfidence
}
