package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/khajiev13/amazon-crawler/models"
	"github.com/khajiev13/amazon-crawler/observability"
	"github.com/khajiev13/amazon-crawler/utils"
)

var titleLinkStrategies = []Strategy[*goquery.Selection]{
	anchorAt(TitleLinkSelector),
	anchorAt(TitleLinkAltSelector),
	anchorAt(TitleLinkLastResort),
}

func anchorAt(selector string) Strategy[*goquery.Selection] {
	return func(card *goquery.Selection) (*goquery.Selection, bool) {
		a := card.Find(selector).First()
		return a, a.Length() > 0
	}
}

// ParseProducts extracts every well-formed result card from a results page.
// Cards without a title, link or ASIN are skipped.
func ParseProducts(doc *goquery.Document) []models.Product {
	cards, used := FirstMatch(doc.Selection, ResultCardSelector, ResultCardFallback)
	if used == "" {
		return nil
	}

	products := make([]models.Product, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		asin := strings.TrimSpace(card.AttrOr("data-asin", ""))
		anchor, ok := FirstOf(card, titleLinkStrategies...)
		if !ok {
			slog.Debug("result card has no title link", "index", i, "asin", asin)
			return
		}

		title := cleanText(anchor.Find("span").First().Text())
		if title == "" {
			title = cleanText(anchor.Text())
		}
		link := resolveLink(doc.Url, anchor.AttrOr("href", ""))

		if title == "" || link == "" || asin == "" {
			slog.Debug("skipping partial result card", "index", i, "asin", asin)
			return
		}
		products = append(products, models.NewProduct(title, link, asin))
	})
	return products
}

// HasNextResultsPage reports whether the results pager offers an enabled
// "next" control.
func HasNextResultsPage(doc *goquery.Document) bool {
	next := doc.Find(ResultsNextSelector).First()
	if next.Length() == 0 {
		return false
	}
	if next.HasClass(ResultsNextDisabled) || next.AttrOr("aria-disabled", "") == "true" {
		return false
	}
	return true
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil || ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// CollectProducts walks the result pages from the current one, extracting
// products until the pager runs out or maxPages pages were read.
// Products are de-duplicated by ASIN.
func (n *Navigator) CollectProducts(ctx context.Context) ([]models.Product, error) {
	seen := map[string]bool{}
	var all []models.Product

	for page := 1; n.cfg.MaxPages <= 0 || page <= n.cfg.MaxPages; page++ {
		doc, err := Snapshot(ctx)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			slog.WarnContext(ctx, "could not read results page", "page", page, "err", err)
			break
		}

		got := ParseProducts(doc)
		added := 0
		for _, p := range got {
			if seen[p.ASIN] {
				continue
			}
			seen[p.ASIN] = true
			all = append(all, p)
			added++
			slog.DebugContext(ctx, "found product", "asin", p.ASIN, "title", utils.Truncate(p.Title, 50))
		}
		observability.ProductsScraped.Add(float64(added))
		slog.InfoContext(ctx, "results page parsed", "page", page, "products", added, "total", len(all))

		if !HasNextResultsPage(doc) {
			slog.InfoContext(ctx, "no more result pages", "page", page)
			break
		}
		if err := n.nextResultsPage(ctx); err != nil {
			slog.WarnContext(ctx, "failed to open next results page", "page", page, "err", err)
			break
		}
	}

	return all, nil
}

func (n *Navigator) nextResultsPage(ctx context.Context) error {
	click := func(ctx context.Context) error {
		if err := chromedp.Run(ctx,
			chromedp.ScrollIntoView(ResultsNextSelector, chromedp.ByQuery),
			chromedp.Click(ResultsNextSelector, chromedp.ByQuery),
		); err != nil {
			return fmt.Errorf("click next page: %w", err)
		}
		// The old cards stay in the DOM until the new page replaces them.
		return utils.Pause(ctx, n.cfg.PageDelay)
	}
	cards := func(ctx context.Context) (int, error) {
		return WaitAny(ctx, n.cfg.WaitTimeout, ResultCardSelector, ResultCardFallback)
	}
	if _, err := landPage(ctx, n.cfg.PageTimeout, n.challenges, click, cards); err != nil {
		return err
	}
	observability.PagesVisited.WithLabelValues("results").Inc()
	return nil
}
