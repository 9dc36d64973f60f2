package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khajiev13/amazon-crawler/models"
)

var mentionsPattern = regexp.MustCompile(`([\d,]+)\s+(?:\w+\s+)?mentions?`)

// ParseSentiment reads the "Customers say" block: a generated summary and a
// row of aspect buttons, each tagged positive, negative or mixed.
func ParseSentiment(doc *goquery.Document) models.CustomerSentiment {
	var s models.CustomerSentiment
	if v, ok := FirstOf(doc.Selection, TextOf(InsightsSummarySelector)); ok {
		s.Summary = v
	}

	doc.Find(InsightsAspectSelector).Each(func(_ int, btn *goquery.Selection) {
		name := cleanText(btn.Find("span").First().Text())
		if name == "" {
			name = cleanText(btn.Text())
		}
		if name == "" {
			return
		}
		a := models.Aspect{Name: name, Mentions: aspectMentions(btn)}
		switch aspectTone(btn) {
		case "positive":
			s.Positive = append(s.Positive, a)
		case "negative":
			s.Negative = append(s.Negative, a)
		default:
			s.Mixed = append(s.Mixed, a)
		}
	})
	return s
}

func aspectTone(btn *goquery.Selection) string {
	if v, ok := btn.Attr("data-sentiment"); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	classes := btn.AttrOr("class", "")
	btn.Find("[class]").Each(func(_ int, child *goquery.Selection) {
		classes += " " + child.AttrOr("class", "")
	})
	classes = strings.ToLower(classes)
	switch {
	case strings.Contains(classes, "positive"):
		return "positive"
	case strings.Contains(classes, "negative"):
		return "negative"
	}
	return "mixed"
}

func aspectMentions(btn *goquery.Selection) int {
	for _, text := range []string{btn.AttrOr("aria-label", ""), btn.AttrOr("aria-description", ""), btn.Text()} {
		m := mentionsPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			return n
		}
	}
	return 0
}
