package classify

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		url  string
		want Tier
	}{
		{"https://www.amazon.com/dp/B0TEST", TierFirecrawl},
		{"https://amazon.co.uk/gp/product/1", TierFirecrawl},
		{"https://www.etsy.com/listing/1", TierFirecrawl},
		{"https://www.zara.com/us/en/shirt", TierProblematic},
		{"https://shop.nike.com/air", TierProblematic},
		{"https://www.temu.com/thing.html", TierProblematic},
		{"https://smallstore.example.com/item", TierStandard},
		{"not a url", TierStandard},
	}
	for _, c := range cases {
		if got := Classify(c.url); got != c.want {
			t.Fatalf("Classify(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}
