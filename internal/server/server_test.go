package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pocketpause/pausecore/pkg/parser"
	"github.com/pocketpause/pausecore/pkg/product"
	"github.com/pocketpause/pausecore/pkg/rules"
)

type stubStrategy struct{}

func (stubStrategy) Name() string { return "stub" }

func (stubStrategy) TryExtract(_ context.Context, _ string, _ *parser.Context) (*product.ParseResult, error) {
	info := product.ProductInfo{ItemName: "Stub Item", Price: "5.00"}
	return &product.ParseResult{Success: true, Data: info, Confidence: product.Score(info)}, nil
}

func testServer(t *testing.T, user, pass string) *Server {
	t.Helper()
	store, err := rules.Open(filepath.Join(t.TempDir(), "rules.sqlite"))
	if err != nil {
		t.Fatalf("rules.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	p := parser.New(parser.Config{Strategies: []parser.Strategy{stubStrategy{}}})
	return New(p, store, nil, user, pass)
}

func TestHandleParse(t *testing.T) {
	s := testServer(t, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"url": "https://example.com/p/thing"}`))
	rec := httptest.NewRecorder()
	s.basicAuth(s.handleParse)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result product.ParseResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Data.ItemName != "Stub Item" {
		t.Fatalf("result = %+v", result)
	}
}

func TestHandleParseRequiresURL(t *testing.T) {
	s := testServer(t, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.basicAuth(s.handleParse)(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	s := testServer(t, "admin", "hunter2")

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	s.basicAuth(s.handleMetrics)(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.SetBasicAuth("admin", "hunter2")
	rec = httptest.NewRecorder()
	s.basicAuth(s.handleMetrics)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", rec.Code)
	}
}

func TestHandleSchedulePreview(t *testing.T) {
	s := testServer(t, "", "")

	body := `{
		"settings": {
			"notification_schedule_type": "custom_time",
			"notification_time_preference": "09:00",
			"quiet_hours_start": "22:00",
			"quiet_hours_end": "08:00"
		},
		"ready_time": "2099-03-10T14:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.basicAuth(s.handleSchedulePreview)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SchedulePreviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2099, 3, 11, 9, 0, 0, 0, time.UTC)
	if !resp.ScheduledTime.Equal(want) {
		t.Fatalf("ScheduledTime = %v, want %v", resp.ScheduledTime, want)
	}
}

func TestHandleRulesLookup(t *testing.T) {
	s := testServer(t, "", "")
	if err := s.Rules.UpsertRule(context.Background(), rules.DomainRule{
		Domain:     "example.com",
		Confidence: 0.8,
	}); err != nil {
		t.Fatalf("UpsertRule: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rules?domain=example.com", nil)
	rec := httptest.NewRecorder()
	s.basicAuth(s.handleRules)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/rules?domain=unknown.net", nil)
	rec = httptest.NewRecorder()
	s.basicAuth(s.handleRules)(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown domain status = %d, want 404", rec.Code)
	}
}
