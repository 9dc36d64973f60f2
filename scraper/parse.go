package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/khajiev13/amazon-crawler/models"
)

var (
	starClassPattern  = regexp.MustCompile(`\ba-star-(?:small-|mini-|medium-)?(\d)(?:-(\d))?\b`)
	outOfPattern      = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*out of`)
	helpfulPattern    = regexp.MustCompile(`(?i)^([\d,.]+)\s+people found this helpful`)
	helpfulOnePattern = regexp.MustCompile(`(?i)^(?:one|1)\s+person found this helpful`)
	starTitlePrefix   = regexp.MustCompile(`^\d+(?:[.,]\d+)?\s+out of \d+ stars\s*`)
)

// RatingFromClass reads the star count encoded in a class attribute such as
// "a-icon a-icon-star a-star-4 review-rating". "a-star-4-5" yields "4.5".
func RatingFromClass(class string) (string, bool) {
	m := starClassPattern.FindStringSubmatch(class)
	if m == nil {
		return "", false
	}
	if m[2] != "" {
		return m[1] + "." + m[2], true
	}
	return m[1], true
}

// RatingFromText reads a rating from text like "4.5 out of 5 stars".
func RatingFromText(text string) (string, bool) {
	m := outOfPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseHelpfulCount turns "23 people found this helpful" into 23 and
// "One person found this helpful" into 1. Anything else is 0.
func ParseHelpfulCount(text string) int {
	text = cleanText(text)
	if helpfulOnePattern.MatchString(text) {
		return 1
	}
	m := helpfulPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// SplitReviewDate splits "Reviewed in the United States on February 18, 2025"
// into country and date. Text in any other shape is returned whole as the
// date with an unknown country.
func SplitReviewDate(text string) (country, date string) {
	text = cleanText(text)
	if text == "" {
		return models.Unknown, models.Unknown
	}
	_, rest, ok := strings.Cut(text, "Reviewed in ")
	if !ok {
		return models.Unknown, text
	}
	country, date, ok = strings.Cut(rest, " on ")
	if !ok {
		return models.Unknown, text
	}
	return strings.TrimSpace(country), strings.TrimSpace(date)
}

// FullSizeImageURL rewrites a review thumbnail URL to its large variant.
func FullSizeImageURL(thumb string) string {
	if strings.Contains(thumb, "._SY88") {
		return strings.Replace(thumb, "._SY88", "._SL1600_", 1)
	}
	return thumb
}

// stripStarPrefix removes the "5.0 out of 5 stars" text some layouts put
// inside the title link.
func stripStarPrefix(title string) string {
	return strings.TrimSpace(starTitlePrefix.ReplaceAllString(title, ""))
}

var reviewDateLayouts = []string{"January 2, 2006", "2 January 2006", "Jan 2, 2006"}

// ParseReviewDate parses the date half of a review-date line.
func ParseReviewDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WithinDays reports whether a review is inside the recency window ending at
// now. Reviews with unparsable dates are kept.
func WithinDays(r models.Review, days int, now time.Time) bool {
	if days <= 0 {
		return true
	}
	t, ok := ParseReviewDate(r.Date)
	if !ok {
		return true
	}
	return !t.Before(now.AddDate(0, 0, -days))
}
