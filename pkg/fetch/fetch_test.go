package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetExtractsTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("request carried no User-Agent")
		}
		w.Write([]byte("<html><head><title>\n  Walnut Desk | Shop\n</title></head><body></body></html>"))
	}))
	defer ts.Close()

	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	page, err := c.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if page.Title != "Walnut Desk | Shop" {
		t.Fatalf("Title = %q", page.Title)
	}
	if page.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d", page.StatusCode)
	}
}

func TestGetNon2xxIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer ts.Close()

	c, _ := New("")
	if _, err := c.Get(context.Background(), ts.URL); err == nil {
		t.Fatal("403 response did not surface as error")
	}
}

func TestHTMLTitleAndFirstH1(t *testing.T) {
	body := "<html><head><title>Page Title</title></head><body><h1>Main Heading</h1><h1>Second</h1></body></html>"
	if title, ok := HTMLTitle(body); !ok || title != "Page Title" {
		t.Fatalf("HTMLTitle = %q, %v", title, ok)
	}
	if h1, ok := FirstH1(body); !ok || h1 != "Main Heading" {
		t.Fatalf("FirstH1 = %q, %v", h1, ok)
	}
	if _, ok := HTMLTitle("<div>no title</div>"); ok {
		t.Fatal("HTMLTitle found a title where none exists")
	}
}
