package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/models"
	"github.com/khajiev13/amazon-crawler/observability"
	"github.com/khajiev13/amazon-crawler/utils"
)

var (
	titleStrategies = []Strategy[string]{
		TextOf(ReviewTitleLink + ` span:not(.a-icon-alt):not(.a-letter-space)`),
		TextOf(ReviewTitleLink),
		TextOf(ReviewTitleSpan),
	}
	ratingStrategies = []Strategy[string]{
		ratingAt(ReviewStarSelector),
		ratingAt(ReviewStarAltSelector),
	}
	helpfulStrategies = []Strategy[string]{
		TextOf(HelpfulVoteSelector),
		TextOf(HelpfulAltSelector),
	}
)

// ratingAt reads the star class of the icon at selector, falling back to its
// "N out of 5" text.
func ratingAt(selector string) Strategy[string] {
	return func(node *goquery.Selection) (string, bool) {
		icon := node.Find(selector).First()
		if icon.Length() == 0 {
			return "", false
		}
		if r, ok := RatingFromClass(icon.AttrOr("class", "")); ok {
			return r, true
		}
		return RatingFromText(cleanText(icon.Text()))
	}
}

// ParseReview extracts one review node. Every field is read on its own so a
// missing element only leaves that field at its default.
func ParseReview(node *goquery.Selection) models.Review {
	r := models.NewReview()

	if v, ok := FirstOf(node, TextOf(ReviewerNameSelector)); ok {
		r.CustomerName = v
	}
	if v, ok := FirstOf(node, TextOf(ReviewDateSelector)); ok {
		r.Country, r.Date = SplitReviewDate(v)
	}
	if v, ok := FirstOf(node, titleStrategies...); ok {
		if t := stripStarPrefix(v); t != "" {
			r.Title = t
		}
	}
	if v, ok := FirstOf(node, ratingStrategies...); ok {
		r.Rating = v
	}
	if v, ok := FirstOf(node, TextOf(ReviewBodySelector)); ok {
		r.Text = v
	}

	node.Find(ReviewImageSelector).Each(func(_ int, img *goquery.Selection) {
		thumb := strings.TrimSpace(img.AttrOr("src", ""))
		if thumb == "" {
			thumb = strings.TrimSpace(img.Find("img").AttrOr("src", ""))
		}
		if thumb == "" {
			return
		}
		r.Images = append(r.Images, models.ReviewImage{
			ThumbnailURL: thumb,
			FullSizeURL:  FullSizeImageURL(thumb),
		})
	})

	if v, ok := FirstOf(node, TextOf(VerifiedBadgeSelector)); ok {
		r.VerifiedPurchase = strings.Contains(strings.ToLower(v), "verified purchase")
	}
	if v, ok := FirstOf(node, helpfulStrategies...); ok {
		r.HelpfulCount = ParseHelpfulCount(v)
	}
	return r
}

// ParseReviews extracts every review node on a reviews page.
func ParseReviews(doc *goquery.Document) []models.Review {
	nodes, used := FirstMatch(doc.Selection, ReviewNodeSelectors...)
	if used == "" {
		slog.Debug("no review elements found using any selector pattern")
		return nil
	}
	slog.Debug("found review nodes", "count", nodes.Length(), "selector", used)

	reviews := make([]models.Review, 0, nodes.Length())
	nodes.Each(func(_ int, node *goquery.Selection) {
		reviews = append(reviews, ParseReview(node))
	})
	return reviews
}

// HasNextReviewPage reports whether the review pager offers an enabled
// "next" item.
func HasNextReviewPage(doc *goquery.Document) bool {
	next := doc.Find(ReviewNextItem).First()
	if next.Length() == 0 {
		return false
	}
	return !next.HasClass(ReviewNextDisabled)
}

// ReviewPager is the browser side of review extraction: what the extractor
// needs from the page it is reading.
type ReviewPager interface {
	// Current returns a snapshot of the page being read.
	Current(ctx context.Context) (*goquery.Document, error)
	// Next moves to the following page.
	Next(ctx context.Context) error
}

// ReviewExtractor collects reviews page by page.
type ReviewExtractor struct {
	MaxReviews int
	RecentDays int
	Now        func() time.Time
}

// Extract reads reviews from pager until the pager runs out, a page fails
// to load, or MaxReviews reviews were collected. Navigation failures end the
// walk without an error; whatever was collected is returned.
func (e ReviewExtractor) Extract(ctx context.Context, pager ReviewPager) []models.Review {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	var all []models.Review
	for page := 1; ; page++ {
		doc, err := pager.Current(ctx)
		if err != nil {
			slog.WarnContext(ctx, "could not read review page", "page", page, "err", err)
			break
		}

		for _, r := range ParseReviews(doc) {
			if !WithinDays(r, e.RecentDays, now()) {
				slog.DebugContext(ctx, "review outside recency window", "date", r.Date)
				continue
			}
			all = append(all, r)
			slog.DebugContext(ctx, "extracted review",
				"title", utils.Truncate(r.Title, 30),
				"customer", r.CustomerName,
				"country", r.Country,
				"rating", r.Rating,
				"images", len(r.Images),
			)
			if e.MaxReviews > 0 && len(all) >= e.MaxReviews {
				slog.InfoContext(ctx, "reached maximum number of reviews", "max", e.MaxReviews)
				observability.ReviewsScraped.Add(float64(len(all)))
				return all
			}
		}

		if !HasNextReviewPage(doc) {
			slog.InfoContext(ctx, "no more review pages", "page", page)
			break
		}
		if err := pager.Next(ctx); err != nil {
			slog.WarnContext(ctx, "failed to navigate to next review page", "page", page, "err", err)
			break
		}
	}

	slog.InfoContext(ctx, "collected reviews", "count", len(all))
	observability.ReviewsScraped.Add(float64(len(all)))
	return all
}

// BrowserReviewPager pages through reviews in the live tab. Before each page
// is read it clicks any "translate to English" control it finds.
type BrowserReviewPager struct {
	cfg        config.Config
	challenges ChallengeHandler
}

func NewBrowserReviewPager(cfg config.Config, challenges ChallengeHandler) *BrowserReviewPager {
	return &BrowserReviewPager{cfg: cfg, challenges: challenges}
}

func (p *BrowserReviewPager) Current(ctx context.Context) (*goquery.Document, error) {
	TranslateReviews(ctx, p.cfg.WaitTimeout)
	return Snapshot(ctx)
}

func (p *BrowserReviewPager) Next(ctx context.Context) error {
	click := func(ctx context.Context) error {
		if err := chromedp.Run(ctx,
			chromedp.ScrollIntoView(ReviewNextLink, chromedp.ByQuery),
			chromedp.Click(ReviewNextLink, chromedp.ByQuery),
		); err != nil {
			return fmt.Errorf("click next review page: %w", err)
		}
		return utils.Pause(ctx, config.Delay{Min: 2 * time.Second, Max: 3 * time.Second})
	}
	list := func(ctx context.Context) (int, error) {
		return WaitAny(ctx, p.cfg.WaitTimeout, ReviewListSelector)
	}
	if _, err := landPage(ctx, p.cfg.PageTimeout, p.challenges, click, list); err != nil {
		return err
	}
	observability.PagesVisited.WithLabelValues("reviews").Inc()
	return nil
}

// TranslateReviews clicks the in-page translation controls when present.
// Their absence is normal.
func TranslateReviews(ctx context.Context, timeout time.Duration) {
	clickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := ClickAll(clickCtx, TranslateSelector)
	if err != nil {
		slog.DebugContext(ctx, "translate control lookup failed", "err", err)
		return
	}
	if n == 0 {
		return
	}
	slog.InfoContext(ctx, "translating reviews to English", "controls", n)
	_ = utils.Pause(clickCtx, config.Delay{Min: time.Second, Max: 2 * time.Second})
}
