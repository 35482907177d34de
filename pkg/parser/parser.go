// Package parser orchestrates the layered product-URL extraction pipeline:
// cache check, site classification, structured/heuristic/remote strategies,
// screenshot fallback. Its hard invariant: it always returns a result object
// and never surfaces an error to the caller.
package parser

import (
	"context"
	"errors"
	"time"

	"github.com/pocketpause/pausecore/pkg/classify"
	"github.com/pocketpause/pausecore/pkg/fetch"
	"github.com/pocketpause/pausecore/pkg/product"
	"github.com/pocketpause/pausecore/pkg/remote"
	"github.com/pocketpause/pausecore/pkg/rules"
	"github.com/pocketpause/pausecore/pkg/urlutil"
)

// Fetcher retrieves a page directly over HTTP.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Page, error)
}

// Remote is the rendering/extraction backend surface the parser needs.
type Remote interface {
	Crawl(ctx context.Context, url string) (*remote.Response, error)
	Extract(ctx context.Context, url string) (*remote.Response, error)
	Screenshot(ctx context.Context, url string) (*remote.Response, error)
}

// RuleSource resolves per-domain selector rules.
type RuleSource interface {
	GetRulesForDomain(url string) (*rules.DomainRule, error)
}

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// lowRuleConfidence marks a domain rule as stale enough that the remote
// backend is preferred over rule-based local extraction.
const lowRuleConfidence = 0.3

// Config holds everything a Parser needs. Zero-value optional fields fall
// back to safe defaults.
type Config struct {
	Fetcher  Fetcher
	Remote   Remote     // optional; without it only local strategies run
	Rules    RuleSource // optional
	CacheTTL time.Duration
	Log      Logger // optional; nil = no logging

	// Strategies overrides the built-in chain. Test hook; leave nil in
	// production use.
	Strategies []Strategy
}

// Parser composes the extraction strategies. Construct once, share freely;
// all methods are safe for concurrent use.
type Parser struct {
	fetcher    Fetcher
	remote     Remote
	rules      RuleSource
	log        Logger
	cache      *resultCache
	metrics    *metricsRecorder
	strategies []Strategy
}

// New builds a Parser from config.
func New(cfg Config) *Parser {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	p := &Parser{
		fetcher: cfg.Fetcher,
		remote:  cfg.Remote,
		rules:   cfg.Rules,
		log:     log,
		cache:   newResultCache(cfg.CacheTTL),
		metrics: newMetricsRecorder(),
	}
	p.strategies = cfg.Strategies
	return p
}

// ParseProductURL is the legacy-compatible entry point returning only the
// extracted fields.
func (p *Parser) ParseProductURL(ctx context.Context, rawURL string) product.ProductInfo {
	return p.ParseProductURLSmart(ctx, rawURL).Data
}

// ParseProductURLSmart runs the full pipeline. It never fails: on total
// extraction failure the result degrades to a low-confidence object built
// from the URL itself.
func (p *Parser) ParseProductURLSmart(ctx context.Context, rawURL string) product.ParseResult {
	start := time.Now()
	key := urlutil.NormalizeURL(rawURL)

	if cached, ok := p.cache.get(key); ok {
		p.log.Debugf("cache hit for %s", key)
		p.metrics.recordParse(cached.Method, cached.Confidence, 0, true)
		return cached
	}

	result := p.runPipeline(ctx, key)
	p.cache.set(key, result)
	p.metrics.recordParse(result.Method, result.Confidence, time.Since(start), false)
	return result
}

func (p *Parser) runPipeline(ctx context.Context, url string) product.ParseResult {
	pctx := &Context{tier: classify.Classify(url)}
	if p.rules != nil {
		if rule, err := p.rules.GetRulesForDomain(url); err == nil {
			pctx.rule = rule
		}
	}

	var (
		merged   product.ProductInfo
		method   string
		attempts []*product.ParseResult
	)

	for _, s := range p.strategiesFor(pctx) {
		res, err := p.tryStrategy(ctx, s, url, pctx)
		if err != nil {
			p.log.Debugf("strategy %s failed for %s: %v", s.Name(), url, err)
			continue
		}
		if res == nil {
			continue
		}
		attempts = append(attempts, res)

		// First writer wins per field: earlier strategies' values are
		// never overwritten by later ones.
		before := merged
		merged.Merge(res.Data)
		if method == "" || (before.ItemName == "" && merged.ItemName != "") {
			method = s.Name()
		}

		check := product.ParseResult{Data: merged, Confidence: product.Score(merged)}
		if product.GoodEnough(&check) {
			break
		}
	}

	if ShouldUseScreenshotFallback(attempts) {
		if shot := p.screenshotFallback(ctx, url); shot != nil {
			merged.Merge(shot.Data)
			method = shot.Method
		}
	}

	// Fill the guaranteed minimum from the URL itself.
	fallback := product.ProductInfo{
		StoreName:    urlutil.StoreNameFromURL(url),
		ItemName:     urlutil.TitleFromPath(url),
		CanonicalURL: url,
	}
	merged.Merge(fallback)

	confidence := product.Score(merged)
	if method == "" {
		method = "fallback"
		confidence = 0.1
	}

	return product.ParseResult{
		Success:    len(attempts) > 0 && merged.ItemName != "",
		Data:       merged,
		Method:     method,
		Confidence: confidence,
	}
}

// tryStrategy isolates one strategy call and converts panics into plain
// failures so a bad document can never take the pipeline down.
func (p *Parser) tryStrategy(ctx context.Context, s Strategy, url string, pctx *Context) (res *product.ParseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("strategy %s panicked for %s: %v", s.Name(), url, r)
			res, err = nil, errors.New("strategy panicked")
		}
	}()
	return s.TryExtract(ctx, url, pctx)
}

// strategiesFor orders the chain by site tier:
//   - problematic sites skip the cheap local fetch entirely
//   - firecrawl-preferred sites lead with schema extraction
//   - a stale domain rule demotes local heuristics below the backend
func (p *Parser) strategiesFor(pctx *Context) []Strategy {
	if p.strategies != nil {
		return p.strategies
	}

	structured := &structuredStrategy{p}
	heuristic := &heuristicStrategy{p}
	rExtract := &remoteExtractStrategy{p}
	rCrawl := &remoteCrawlStrategy{p}

	switch pctx.tier {
	case classify.TierProblematic:
		return []Strategy{rExtract, rCrawl}
	case classify.TierFirecrawl:
		return []Strategy{rExtract, structured, heuristic, rCrawl}
	default:
		if pctx.rule != nil && pctx.rule.Confidence < lowRuleConfidence {
			return []Strategy{structured, rExtract, heuristic, rCrawl}
		}
		return []Strategy{structured, heuristic, rExtract, rCrawl}
	}
}

// ClearCache drops all cached parse results.
func (p *Parser) ClearCache() {
	p.cache.clear()
}

// Metrics returns an operational snapshot.
func (p *Parser) Metrics() Metrics {
	return p.metrics.snapshot()
}
