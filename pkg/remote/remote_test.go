package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractRequestAndParse(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"success": true, "extracted": {"itemName": "Test Lamp", "price": "49.99"}}`))
	}))
	defer ts.Close()

	c, err := New(ts.URL, "secret-key", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := c.Extract(context.Background(), "https://example.com/p/lamp")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotPayload["mode"] != ModeExtract || gotPayload["url"] != "https://example.com/p/lamp" {
		t.Fatalf("payload = %+v", gotPayload)
	}
	if gotPayload["schema"] == nil || gotPayload["prompt"] == nil {
		t.Fatal("extract request missing schema or prompt")
	}
	if name := resp.Extracted.Get("itemName").Str; name != "Test Lamp" {
		t.Fatalf("extracted itemName = %q", name)
	}
}

func TestBackendFailureIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "render timed out"}`))
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "", "")
	if _, err := c.Crawl(context.Background(), "https://example.com/"); err == nil {
		t.Fatal("reported failure did not surface as error")
	}
}

func TestNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "", "")
	if _, err := c.Screenshot(context.Background(), "https://example.com/"); err == nil {
		t.Fatal("400 response did not surface as error")
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New("", "", ""); err == nil {
		t.Fatal("empty endpoint accepted")
	}
}
