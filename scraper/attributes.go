package scraper

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khajiev13/amazon-crawler/models"
)

// attributeStrategies returns the lookups for one labelled value on a detail
// page, in the order they are tried.
func attributeStrategies(label string) []Strategy[string] {
	want := normalizeLabel(label)
	return []Strategy[string]{
		systemInfoValue(want),
		comparisonValue(want),
		specTableValue(want),
	}
}

// systemInfoValue reads the overview panel: label cell, value cell.
func systemInfoValue(want string) Strategy[string] {
	return func(root *goquery.Selection) (string, bool) {
		return rowValue(root.Find(SystemInfoRowsSelector), want, func(row *goquery.Selection) (string, string) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return "", ""
			}
			return cells.Eq(0).Text(), cells.Eq(1).Text()
		})
	}
}

// comparisonValue reads the "compare with similar items" table, where the
// row header holds the label and the first data cell belongs to this product.
func comparisonValue(want string) Strategy[string] {
	return func(root *goquery.Selection) (string, bool) {
		return rowValue(root.Find(ComparisonRowsSelector), want, func(row *goquery.Selection) (string, string) {
			head := row.Find("th").First()
			cell := row.Find("td").First()
			if head.Length() == 0 || cell.Length() == 0 {
				return "", ""
			}
			return head.Text(), cell.Text()
		})
	}
}

// specTableValue reads the technical details tables, then the bullet list
// some categories use instead ("Label : Value").
func specTableValue(want string) Strategy[string] {
	return func(root *goquery.Selection) (string, bool) {
		v, ok := rowValue(root.Find(SpecTableRowsSelector), want, func(row *goquery.Selection) (string, string) {
			head := row.Find("th").First()
			cell := row.Find("td").First()
			if head.Length() == 0 || cell.Length() == 0 {
				return "", ""
			}
			return head.Text(), cell.Text()
		})
		if ok {
			return v, true
		}
		return rowValue(root.Find(DetailBulletsSelector), want, func(li *goquery.Selection) (string, string) {
			label, value, found := strings.Cut(cleanText(li.Text()), ":")
			if !found {
				return "", ""
			}
			return label, value
		})
	}
}

func rowValue(rows *goquery.Selection, want string, split func(*goquery.Selection) (string, string)) (string, bool) {
	var value string
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label, v := split(row)
		if normalizeLabel(label) != want {
			return true
		}
		value = cleanText(v)
		return value == ""
	})
	return value, value != ""
}

// LookupAttribute returns the first non-empty value for label found by the
// detail page strategies.
func LookupAttribute(doc *goquery.Document, label string) (string, bool) {
	return FirstOf(doc.Selection, attributeStrategies(label)...)
}

// MatchesAttribute reports whether the value of label contains keyword,
// ignoring case. Strategies are tried in order; one whose value does not
// contain the keyword hands over to the next, and the first match wins.
func MatchesAttribute(doc *goquery.Document, label, keyword string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	for i, s := range attributeStrategies(label) {
		v, ok := try(doc.Selection, s, i)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(v), needle) {
			slog.Debug("attribute matched", "label", label, "value", v, "strategy", i)
			return v, true
		}
		slog.Debug("attribute value does not match", "label", label, "value", v, "strategy", i)
	}
	return "", false
}

// BuildFilteredProduct fills every specification field of p from the detail page.
func BuildFilteredProduct(p models.Product, doc *goquery.Document) models.FilteredProduct {
	fp := models.NewFilteredProduct(p)
	for _, label := range models.SpecLabels {
		if v, ok := LookupAttribute(doc, label); ok {
			fp.Specs[label] = v
		}
	}
	if fp.Specs[models.SpecAverageRating] == models.Unknown {
		if v, ok := FirstOf(doc.Selection, TextOf(`#acrPopover span.a-icon-alt`)); ok {
			fp.Specs[models.SpecAverageRating] = v
		}
	}
	if s := ParseSentiment(doc); !s.Empty() {
		fp.Sentiment = &s
	}
	return fp
}
