package urlutil

import "testing"

func TestNormalizeURLStripsTracking(t *testing.T) {
	in := "https://shop.example.com/item?utm_source=newsletter&utm_campaign=x&fbclid=abc&color=red#reviews"
	got := NormalizeURL(in)
	want := "https://shop.example.com/item?color=red"
	if got != want {
		t.Fatalf("NormalizeURL(%q) = %q, want %q", in, got, want)
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	in := "https://example.com/p/1?gclid=zzz&size=m"
	once := NormalizeURL(in)
	twice := NormalizeURL(once)
	if once != twice {
		t.Fatalf("NormalizeURL not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalizeURLFailsOpen(t *testing.T) {
	for _, in := range []string{"not a url", "", "/relative/path?utm_source=x"} {
		if got := NormalizeURL(in); got != in {
			t.Fatalf("NormalizeURL(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestStoreNameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.bookshop.org/books/123", "Bookshop"},
		{"https://shop.example.co.uk/item", "Example"},
		{"https://cool-gadgets.com/x", "Cool Gadgets"},
		{"garbage", "Unknown Store"},
		{"", "Unknown Store"},
	}
	for _, c := range cases {
		if got := StoreNameFromURL(c.url); got != c.want {
			t.Fatalf("StoreNameFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestTitleFromPath(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/products/blue-suede-shoes", "Blue Suede Shoes"},
		{"https://example.com/p/cast_iron_pan/12345", "Cast Iron Pan"},
		{"https://example.com/item/wool-socks.html", "Wool Socks"},
		{"https://example.com/", ""},
		{"https://example.com/9982", ""},
	}
	for _, c := range cases {
		if got := TitleFromPath(c.url); got != c.want {
			t.Fatalf("TitleFromPath(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}
