package extract

import "testing"

func TestFromHeuristicsSelectors(t *testing.T) {
	html := `<html><body>
	<h1 class="product-title">Ceramic Mug - Potter's Mark</h1>
	<span itemprop="price" content="18.50">$18.50</span>
	<div class="product-image"><img src="/img/mug.jpg"></div>
	<span class="brand-name">Potter's Mark</span>
	</body></html>`

	info := FromHeuristics(docFromHTML(t, html), "https://example.com/p/mug", GenericSelectors())
	if info.ItemName != "Ceramic Mug" {
		t.Fatalf("ItemName = %q", info.ItemName)
	}
	if info.Price != "18.50" {
		t.Fatalf("Price = %q", info.Price)
	}
	if info.ImageURL != "https://example.com/img/mug.jpg" {
		t.Fatalf("ImageURL = %q", info.ImageURL)
	}
	if info.Brand != "Potter's Mark" {
		t.Fatalf("Brand = %q", info.Brand)
	}
}

func TestPriceNearBuyButton(t *testing.T) {
	html := `<html><body>
	<div class="related"><span class="price">$9.99</span></div>
	<div class="buy-box">
		<span class="sale-price">$42.00</span>
		<button class="addtocart">Add to Cart</button>
	</div>
	</body></html>`

	price, currency := priceNearBuyButton(docFromHTML(t, html))
	if price != "42.00" {
		t.Fatalf("price = %q, want the one next to the buy button", price)
	}
	if currency != "USD" {
		t.Fatalf("currency = %q", currency)
	}
}

func TestLargestImageFilters(t *testing.T) {
	html := `<html><body>
	<img src="/logo.png" width="400" height="400">
	<img src="/thumb.jpg" width="80" height="80">
	<img src="/hero.jpg" width="800" height="600">
	<img src="/alt.jpg" width="300" height="300">
	</body></html>`

	got := largestImage(docFromHTML(t, html), imageFilterDefaults)
	if got != "/hero.jpg" {
		t.Fatalf("largestImage = %q", got)
	}
}

func TestMatchPrice(t *testing.T) {
	cases := []struct {
		in           string
		price, curr  string
	}{
		{"$1,299.99", "1299.99", "USD"},
		{"€30", "30", "EUR"},
		{"Now only £45.50!", "45.50", "GBP"},
		{"49.99", "49.99", ""},
		{"no price here", "", ""},
	}
	for _, c := range cases {
		price, curr := MatchPrice(c.in)
		if price != c.price || curr != c.curr {
			t.Fatalf("MatchPrice(%q) = %q %q, want %q %q", c.in, price, curr, c.price, c.curr)
		}
	}
}

func TestCleanPrice(t *testing.T) {
	cases := []struct{ in, want string }{
		{"$1,299.99", "1299.99"},
		{"1.299.99", "1.29999"},
		{"45.", "45"},
		{"abc", ""},
	}
	for _, c := range cases {
		if got := CleanPrice(c.in); got != c.want {
			t.Fatalf("CleanPrice(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
