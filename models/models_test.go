package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractASIN(t *testing.T) {
	cases := map[string]string{
		"https://www.amazon.com/Samsung-QN55Q60D/dp/B0CVS5XZGB/ref=sr_1_1?keywords=tv": "B0CVS5XZGB",
		"https://www.amazon.com/dp/B09V4MXBSN":                                         "B09V4MXBSN",
		"https://www.amazon.com/gp/product/B08N5WRWNW?th=1":                            "B08N5WRWNW",
		"https://www.amazon.de/product-reviews/B0C1234567/":                            "B0C1234567",
		"https://www.amazon.com/foo/dp/abc123/ref=x":                                   "abc123",
		"https://www.amazon.com/s?k=smart+tv":                                          "",
		"": "",
	}
	for link, want := range cases {
		assert.Equal(t, want, ExtractASIN(link), link)
	}
}

func TestNewProductDerivesASIN(t *testing.T) {
	p := NewProduct("  TCL 50\" Class  ", "https://www.amazon.com/TCL/dp/B0BXYZ1234/ref=sr", "")
	assert.Equal(t, "TCL 50\" Class", p.Title)
	assert.Equal(t, "B0BXYZ1234", p.ASIN)

	p = NewProduct("x", "https://www.amazon.com/TCL/dp/B0BXYZ1234", "B000000001")
	assert.Equal(t, "B000000001", p.ASIN, "explicit ASIN wins")
}

func TestReviewDefaults(t *testing.T) {
	r := NewReview()
	for i, v := range r.Row()[:6] {
		assert.Equal(t, Unknown, v, ReviewHeader[i])
	}
	assert.Equal(t, []string{"false", "0", ""}, r.Row()[6:])
	require.NotNil(t, r.Images)
}

func TestReviewImageURLs(t *testing.T) {
	r := NewReview()
	r.Images = []ReviewImage{
		{ThumbnailURL: "a._SY88.jpg", FullSizeURL: "a._SL1600_.jpg"},
		{ThumbnailURL: "b.jpg", FullSizeURL: "b.jpg"},
	}
	assert.Equal(t, "a._SL1600_.jpg,b.jpg", r.ImageURLs())
}

func TestFilteredProductRow(t *testing.T) {
	f := NewFilteredProduct(NewProduct("TV", "https://www.amazon.com/dp/B0BXYZ1234", ""))
	f.Specs[SpecOperatingSystem] = "Tizen"
	f.Sentiment = &CustomerSentiment{
		Positive: []Aspect{{Name: "Picture quality", Mentions: 120}},
		Negative: []Aspect{{Name: "Remote"}},
	}

	header := f.Header()
	row := f.Row()
	require.Len(t, row, len(header))
	assert.Equal(t, []string{"title", "link", "asin", "brand"}, header[:4])
	assert.Contains(t, header, "operating_system")

	idx := map[string]string{}
	for i, h := range header {
		idx[h] = row[i]
	}
	assert.Equal(t, "Tizen", idx["operating_system"])
	assert.Equal(t, Unknown, idx["brand"])
	assert.Equal(t, "Picture quality (120)", idx["positive_aspects"])
	assert.Equal(t, "Remote", idx["negative_aspects"])
	assert.Equal(t, "", idx["mixed_aspects"])
}

func TestValidASIN(t *testing.T) {
	assert.True(t, ValidASIN("B0CVS5XZGB"))
	assert.True(t, ValidASIN("0123456789"))
	assert.False(t, ValidASIN("b0cvs5xzgb"))
	assert.False(t, ValidASIN("B0CVS5XZG"))
	assert.False(t, ValidASIN("../B0CVS5X"))
	assert.False(t, ValidASIN(""))
}
