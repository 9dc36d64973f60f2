package models

import (
	"regexp"
	"strings"
)

// Unknown is the value every text field falls back to when extraction fails.
const Unknown = "N/A"

// Record is anything the storage layer can serialise as a CSV row.
// The header is taken from the first record of a batch.
type Record interface {
	Header() []string
	Row() []string
}

// ProductHeader is the column set of a bare product file.
var ProductHeader = []string{"title", "link", "asin"}

var (
	asinPathPattern = regexp.MustCompile(`/(?:dp|gp/product|product-reviews)/([A-Z0-9]{10})(?:[/?#]|$)`)
	asinPattern     = regexp.MustCompile(`^[A-Z0-9]{10}$`)
)

// ValidASIN reports whether s is a bare ten character catalog key.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// Product is a single search-result listing.
type Product struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	ASIN  string `json:"asin"`
}

// NewProduct builds a Product, deriving the ASIN from the link when it is blank.
func NewProduct(title, link, asin string) Product {
	asin = strings.TrimSpace(asin)
	if asin == "" {
		asin = ExtractASIN(link)
	}
	return Product{
		Title: strings.TrimSpace(title),
		Link:  strings.TrimSpace(link),
		ASIN:  asin,
	}
}

// ExtractASIN returns the catalog key embedded in a product URL, or "".
func ExtractASIN(link string) string {
	m := asinPathPattern.FindStringSubmatch(link)
	if m != nil {
		return m[1]
	}
	// Lower-case or non-canonical keys still appear after /dp/ on some links.
	if _, rest, ok := strings.Cut(link, "/dp/"); ok {
		key, _, _ := strings.Cut(rest, "/")
		key, _, _ = strings.Cut(key, "?")
		return key
	}
	return ""
}

func (p Product) Header() []string {
	return append([]string(nil), ProductHeader...)
}

func (p Product) Row() []string {
	return []string{p.Title, p.Link, p.ASIN}
}

// ProductResult is the outcome of the review phase for one product.
type ProductResult struct {
	Product    Product
	Reviews    int
	OutputFile string
	Err        error
}
