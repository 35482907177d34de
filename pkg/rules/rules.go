// Package rules keeps per-domain selector rules and the user-feedback log
// that tunes their confidence over time.
package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pocketpause/pausecore/pkg/extract"
	"github.com/pocketpause/pausecore/pkg/product"
	"github.com/pocketpause/pausecore/pkg/urlutil"
)

const (
	// Confidence for a rule synthesized from generic selectors.
	seedConfidence = 0.5
	// Each user correction costs this much confidence.
	correctionPenalty = 0.1
	// Rules never drop below this floor; they are advisory, not fatal.
	confidenceFloor = 0.1
)

var ErrNoRule = errors.New("rules: no rule for domain")

// DomainRule holds the selector lists and advisory confidence for one domain.
type DomainRule struct {
	Domain       string            `json:"domain"`
	Selectors    extract.Selectors `json:"selectors"`
	PriceRegex   string            `json:"priceRegex,omitempty"`
	ImageFilters []string          `json:"imageFilters,omitempty"`
	LastUpdated  time.Time         `json:"lastUpdated"`
	Confidence   float64           `json:"confidence"`
}

// Feedback is one user correction of a parse, appended to the log.
type Feedback struct {
	URL            string              `json:"url"`
	UserCorrection product.ProductInfo `json:"userCorrection"`
	OriginalParsed product.ProductInfo `json:"originalParsed"`
	Timestamp      time.Time           `json:"timestamp"`
}

// Store persists rules and feedback in sqlite and keeps rules hydrated in
// memory for lookup on the parse hot path.
type Store struct {
	sql *sql.DB

	mu    sync.RWMutex
	rules map[string]*DomainRule
}

// Open creates the schema if needed and loads all rules into memory.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS domain_rules (
  domain        TEXT PRIMARY KEY,
  selectors     TEXT NOT NULL,
  price_regex   TEXT,
  image_filters TEXT,
  confidence    REAL NOT NULL,
  last_updated  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS rule_feedback (
  id               INTEGER PRIMARY KEY,
  url              TEXT NOT NULL,
  domain           TEXT NOT NULL,
  user_correction  TEXT NOT NULL,
  original_parsed  TEXT NOT NULL,
  created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_feedback_domain ON rule_feedback(domain);
	`); err != nil {
		return nil, err
	}

	s := &Store{sql: db, rules: make(map[string]*DomainRule)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

func (s *Store) load() error {
	rows, err := s.sql.Query("SELECT domain, selectors, price_regex, image_filters, confidence, last_updated FROM domain_rules")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r          DomainRule
			selJSON    string
			priceRe    sql.NullString
			filtersRaw sql.NullString
			updatedStr string
		)
		if err := rows.Scan(&r.Domain, &selJSON, &priceRe, &filtersRaw, &r.Confidence, &updatedStr); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(selJSON), &r.Selectors); err != nil {
			continue // a corrupt row should not take the store down
		}
		r.PriceRegex = priceRe.String
		if filtersRaw.Valid && filtersRaw.String != "" {
			_ = json.Unmarshal([]byte(filtersRaw.String), &r.ImageFilters)
		}
		r.LastUpdated = parseSQLiteTime(updatedStr)
		rule := r
		s.rules[r.Domain] = &rule
	}
	return rows.Err()
}

// GetRulesForDomain resolves the rule for a URL: exact hostname match first,
// then substring match against stored domains. Returns ErrNoRule on miss.
func (s *Store) GetRulesForDomain(rawURL string) (*DomainRule, error) {
	host := urlutil.Hostname(rawURL)
	if host == "" {
		return nil, ErrNoRule
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.rules[host]; ok {
		return cloneRule(r), nil
	}
	for domain, r := range s.rules {
		if strings.Contains(host, domain) {
			return cloneRule(r), nil
		}
	}
	return nil, ErrNoRule
}

// AddFeedback appends a correction to the log and adjusts the domain's rule:
// repeated corrections signal stale selectors, so confidence decays by 0.1
// per correction down to the floor. Missing rules are synthesized from the
// generic selectors at 0.5. Confidence never recovers on successful parses.
func (s *Store) AddFeedback(ctx context.Context, fb Feedback) error {
	domain := urlutil.Hostname(fb.URL)
	if domain == "" {
		return errors.New("rules: feedback URL has no hostname")
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}

	correction, err := json.Marshal(fb.UserCorrection)
	if err != nil {
		return err
	}
	original, err := json.Marshal(fb.OriginalParsed)
	if err != nil {
		return err
	}
	if _, err := s.sql.ExecContext(ctx,
		`INSERT INTO rule_feedback(url, domain, user_correction, original_parsed, created_at) VALUES(?,?,?,?,?)`,
		fb.URL, domain, string(correction), string(original), fb.Timestamp.Format(time.RFC3339)); err != nil {
		return err
	}

	return s.improveDomainRules(ctx, domain, fb)
}

func (s *Store) improveDomainRules(ctx context.Context, domain string, fb Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, exists := s.rules[domain]
	switch {
	case exists && !fb.UserCorrection.IsEmpty():
		rule.Confidence -= correctionPenalty
		if rule.Confidence < confidenceFloor {
			rule.Confidence = confidenceFloor
		}
		rule.LastUpdated = time.Now().UTC()
	case !exists:
		rule = &DomainRule{
			Domain:      domain,
			Selectors:   extract.GenericSelectors(),
			Confidence:  seedConfidence,
			LastUpdated: time.Now().UTC(),
		}
		s.rules[domain] = rule
	default:
		return nil
	}

	return s.persistRule(ctx, rule)
}

// UpsertRule stores a hand-written or imported rule.
func (s *Store) UpsertRule(ctx context.Context, rule DomainRule) error {
	if rule.Domain == "" {
		return errors.New("rules: rule domain is required")
	}
	rule.LastUpdated = time.Now().UTC()
	if rule.Confidence == 0 {
		rule.Confidence = seedConfidence
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := rule
	s.rules[rule.Domain] = &r
	return s.persistRule(ctx, &r)
}

func (s *Store) persistRule(ctx context.Context, rule *DomainRule) error {
	selJSON, err := json.Marshal(rule.Selectors)
	if err != nil {
		return err
	}
	var filtersJSON any
	if len(rule.ImageFilters) > 0 {
		b, err := json.Marshal(rule.ImageFilters)
		if err != nil {
			return err
		}
		filtersJSON = string(b)
	}
	_, err = s.sql.ExecContext(ctx, `
INSERT INTO domain_rules(domain, selectors, price_regex, image_filters, confidence, last_updated)
VALUES(?,?,?,?,?,?)
ON CONFLICT(domain) DO UPDATE SET
  selectors = excluded.selectors,
  price_regex = excluded.price_regex,
  image_filters = excluded.image_filters,
  confidence = excluded.confidence,
  last_updated = excluded.last_updated`,
		rule.Domain, string(selJSON), nullIfEmpty(rule.PriceRegex), filtersJSON,
		rule.Confidence, rule.LastUpdated.Format(time.RFC3339))
	return err
}

// ListRules returns a snapshot of all rules, for inspection.
func (s *Store) ListRules() []DomainRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DomainRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, *cloneRule(r))
	}
	return out
}

func cloneRule(r *DomainRule) *DomainRule {
	clone := *r
	clone.ImageFilters = append([]string(nil), r.ImageFilters...)
	clone.Selectors.Title = append([]string(nil), r.Selectors.Title...)
	clone.Selectors.Price = append([]string(nil), r.Selectors.Price...)
	clone.Selectors.Image = append([]string(nil), r.Selectors.Image...)
	clone.Selectors.Brand = append([]string(nil), r.Selectors.Brand...)
	return &clone
}

func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
