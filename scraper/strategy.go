package scraper

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of reading a value out of a DOM fragment.
// It reports false when it found nothing usable.
type Strategy[T any] func(*goquery.Selection) (T, bool)

// FirstOf runs strategies in order and returns the first value found.
// A strategy that panics is logged and treated as a miss.
func FirstOf[T any](sel *goquery.Selection, strategies ...Strategy[T]) (T, bool) {
	for i, s := range strategies {
		if v, ok := try(sel, s, i); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func try[T any](sel *goquery.Selection, s Strategy[T], idx int) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("selector strategy panicked", "strategy", idx, "err", fmt.Sprint(r))
			var zero T
			v, ok = zero, false
		}
	}()
	return s(sel)
}

// TextOf reads the trimmed text of the first match of selector.
func TextOf(selector string) Strategy[string] {
	return func(sel *goquery.Selection) (string, bool) {
		found := sel.Find(selector).First()
		if found.Length() == 0 {
			return "", false
		}
		text := cleanText(found.Text())
		return text, text != ""
	}
}

// AttrOf reads an attribute of the first match of selector.
func AttrOf(selector, attr string) Strategy[string] {
	return func(sel *goquery.Selection) (string, bool) {
		v, ok := sel.Find(selector).First().Attr(attr)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
}

// FirstMatch returns the elements matched by the first selector that matches any.
func FirstMatch(root *goquery.Selection, selectors ...string) (*goquery.Selection, string) {
	for _, s := range selectors {
		if found := root.Find(s); found.Length() > 0 {
			return found, s
		}
	}
	return root.Slice(0, 0), ""
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// cleanText collapses runs of whitespace, including the invisible direction
// marks and non-breaking spaces the marketplace pads its cells with, and trims.
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200e', '\u200f', '\u00a0':
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// normalizeLabel lower-cases a table label and drops a trailing colon.
func normalizeLabel(s string) string {
	return strings.ToLower(cleanText(strings.TrimRight(cleanText(s), ": ")))
}
