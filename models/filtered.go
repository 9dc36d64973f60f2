package models

import (
	"strconv"
	"strings"
)

// Spec field labels, as they appear in the marketplace's detail tables.
const (
	SpecBrand             = "Brand"
	SpecModelName         = "Model Name"
	SpecScreenSize        = "Screen Size"
	SpecDisplayTechnology = "Display Technology"
	SpecResolution        = "Resolution"
	SpecRefreshRate       = "Refresh Rate"
	SpecOperatingSystem   = "Operating System"
	SpecSpecialFeatures   = "Special Feature"
	SpecConnectivity      = "Connectivity Technology"
	SpecAspectRatio       = "Aspect Ratio"
	SpecModelYear         = "Model Year"
	SpecItemWeight        = "Item Weight"
	SpecDimensions        = "Product Dimensions"
	SpecColor             = "Color"
	SpecAverageRating     = "Customer Reviews"
)

// SpecLabels lists every specification field in column order.
var SpecLabels = []string{
	SpecBrand,
	SpecModelName,
	SpecScreenSize,
	SpecDisplayTechnology,
	SpecResolution,
	SpecRefreshRate,
	SpecOperatingSystem,
	SpecSpecialFeatures,
	SpecConnectivity,
	SpecAspectRatio,
	SpecModelYear,
	SpecItemWeight,
	SpecDimensions,
	SpecColor,
	SpecAverageRating,
}

// FilteredProduct is a Product that matched the attribute filter, enriched
// with whatever technical details the detail page exposed.
type FilteredProduct struct {
	Product
	Specs     map[string]string  `json:"specs"`
	Sentiment *CustomerSentiment `json:"sentiment,omitempty"`
}

// NewFilteredProduct returns a FilteredProduct with every specification set to Unknown.
func NewFilteredProduct(p Product) FilteredProduct {
	specs := make(map[string]string, len(SpecLabels))
	for _, label := range SpecLabels {
		specs[label] = Unknown
	}
	return FilteredProduct{Product: p, Specs: specs}
}

// Spec returns the value of a specification field, or Unknown.
func (f FilteredProduct) Spec(label string) string {
	if v, ok := f.Specs[label]; ok && v != "" {
		return v
	}
	return Unknown
}

func (f FilteredProduct) Header() []string {
	h := f.Product.Header()
	for _, label := range SpecLabels {
		h = append(h, columnName(label))
	}
	return append(h, "positive_aspects", "negative_aspects", "mixed_aspects")
}

func (f FilteredProduct) Row() []string {
	row := f.Product.Row()
	for _, label := range SpecLabels {
		row = append(row, f.Spec(label))
	}
	if f.Sentiment == nil {
		return append(row, "", "", "")
	}
	return append(row,
		joinAspects(f.Sentiment.Positive),
		joinAspects(f.Sentiment.Negative),
		joinAspects(f.Sentiment.Mixed),
	)
}

func columnName(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// Aspect is one "Customers say" topic and how many reviews mention it.
type Aspect struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

// CustomerSentiment groups review aspects by the tone the marketplace assigned.
type CustomerSentiment struct {
	Summary  string   `json:"summary"`
	Positive []Aspect `json:"positive"`
	Negative []Aspect `json:"negative"`
	Mixed    []Aspect `json:"mixed"`
}

// Empty reports whether no aspect or summary was found.
func (c CustomerSentiment) Empty() bool {
	return c.Summary == "" && len(c.Positive) == 0 && len(c.Negative) == 0 && len(c.Mixed) == 0
}

func joinAspects(aspects []Aspect) string {
	parts := make([]string, 0, len(aspects))
	for _, a := range aspects {
		if a.Mentions > 0 {
			parts = append(parts, a.Name+" ("+strconv.Itoa(a.Mentions)+")")
			continue
		}
		parts = append(parts, a.Name)
	}
	return strings.Join(parts, "; ")
}
