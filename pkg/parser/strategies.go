package parser

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/pocketpause/pausecore/pkg/classify"
	"github.com/pocketpause/pausecore/pkg/extract"
	"github.com/pocketpause/pausecore/pkg/fetch"
	"github.com/pocketpause/pausecore/pkg/product"
	"github.com/pocketpause/pausecore/pkg/rules"
)

// Context carries per-parse state shared between strategies, so the page
// fetched for structured extraction is reused by the heuristics.
type Context struct {
	tier classify.Tier
	rule *rules.DomainRule
	page *fetch.Page
	doc  *goquery.Document
}

// Strategy is one extraction approach. A nil result with a nil error means
// "nothing found here, keep going".
type Strategy interface {
	Name() string
	TryExtract(ctx context.Context, url string, pctx *Context) (*product.ParseResult, error)
}

// ensureDoc fetches and parses the target page once per parse run.
func (p *Parser) ensureDoc(ctx context.Context, url string, pctx *Context) (*goquery.Document, error) {
	if pctx.doc != nil {
		return pctx.doc, nil
	}
	if pctx.page == nil {
		page, err := p.fetcher.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		pctx.page = page
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pctx.page.Body))
	if err != nil {
		return nil, err
	}
	pctx.doc = doc
	return doc, nil
}

// structuredStrategy fetches the page directly and reads JSON-LD plus Open
// Graph tags. Cheapest path; skipped for problematic sites upstream.
type structuredStrategy struct{ p *Parser }

func (s *structuredStrategy) Name() string { return "structured" }

func (s *structuredStrategy) TryExtract(ctx context.Context, url string, pctx *Context) (*product.ParseResult, error) {
	doc, err := s.p.ensureDoc(ctx, url, pctx)
	if err != nil {
		return nil, err
	}
	info := extract.FromStructured(doc, url)
	if info.IsEmpty() {
		return nil, nil
	}
	return resultFor(info, s.Name()), nil
}

// heuristicStrategy applies domain-rule selectors (when a rule exists) ahead
// of the generic candidate lists, against the already-fetched document.
type heuristicStrategy struct{ p *Parser }

func (s *heuristicStrategy) Name() string { return "heuristic" }

func (s *heuristicStrategy) TryExtract(ctx context.Context, url string, pctx *Context) (*product.ParseResult, error) {
	doc, err := s.p.ensureDoc(ctx, url, pctx)
	if err != nil {
		return nil, err
	}
	sel := extract.GenericSelectors()
	if pctx.rule != nil {
		sel = mergeSelectors(pctx.rule.Selectors, sel)
	}
	info := extract.FromHeuristics(doc, url, sel)
	if info.IsEmpty() {
		return nil, nil
	}
	return resultFor(info, s.Name()), nil
}

// mergeSelectors puts rule selectors ahead of the generic ones, preserving
// each list's internal priority order.
func mergeSelectors(rule, generic extract.Selectors) extract.Selectors {
	return extract.Selectors{
		Title: append(append([]string(nil), rule.Title...), generic.Title...),
		Price: append(append([]string(nil), rule.Price...), generic.Price...),
		Image: append(append([]string(nil), rule.Image...), generic.Image...),
		Brand: append(append([]string(nil), rule.Brand...), generic.Brand...),
	}
}

// remoteExtractStrategy asks the backend for a schema-constrained extraction
// object, skipping local DOM parsing entirely.
type remoteExtractStrategy struct{ p *Parser }

func (s *remoteExtractStrategy) Name() string { return "remote-extract" }

func (s *remoteExtractStrategy) TryExtract(ctx context.Context, url string, pctx *Context) (*product.ParseResult, error) {
	if s.p.remote == nil {
		return nil, nil
	}
	resp, err := s.p.remote.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	info := mapExtracted(resp.Extracted)
	if info.IsEmpty() {
		return nil, nil
	}
	return resultFor(info, s.Name()), nil
}

func mapExtracted(extracted gjson.Result) product.ProductInfo {
	if !extracted.Exists() {
		return product.ProductInfo{}
	}
	return product.ProductInfo{
		ItemName:      strings.TrimSpace(extracted.Get("itemName").Str),
		Price:         extract.CleanPrice(extracted.Get("price").Str),
		PriceCurrency: strings.TrimSpace(extracted.Get("currency").Str),
		Brand:         strings.TrimSpace(extracted.Get("brand").Str),
		ImageURL:      strings.TrimSpace(extracted.Get("imageUrl").Str),
		Availability:  strings.TrimSpace(extracted.Get("availability").Str),
	}
}

// remoteCrawlStrategy has the backend render the page (JS included), then
// runs the local structured and heuristic extractors over the result.
type remoteCrawlStrategy struct{ p *Parser }

func (s *remoteCrawlStrategy) Name() string { return "remote-crawl" }

func (s *remoteCrawlStrategy) TryExtract(ctx context.Context, url string, pctx *Context) (*product.ParseResult, error) {
	if s.p.remote == nil {
		return nil, nil
	}
	resp, err := s.p.remote.Crawl(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.HTML == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	if err != nil {
		return nil, err
	}

	info := extract.FromStructured(doc, url)
	sel := extract.GenericSelectors()
	if pctx.rule != nil {
		sel = mergeSelectors(pctx.rule.Selectors, sel)
	}
	info.Merge(extract.FromHeuristics(doc, url, sel))
	if info.IsEmpty() {
		return nil, nil
	}
	return resultFor(info, s.Name()), nil
}

func resultFor(info product.ProductInfo, method string) *product.ParseResult {
	return &product.ParseResult{
		Success:    info.ItemName != "",
		Data:       info,
		Method:     method,
		Confidence: product.Score(info),
	}
}
