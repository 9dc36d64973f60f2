package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/models"
	"github.com/khajiev13/amazon-crawler/observability"
	"github.com/khajiev13/amazon-crawler/utils"
)

// AttributeFilter opens product detail pages and keeps the products whose
// configured attribute contains the keyword.
type AttributeFilter struct {
	cfg        config.Config
	challenges ChallengeHandler
}

func NewAttributeFilter(cfg config.Config, challenges ChallengeHandler) *AttributeFilter {
	return &AttributeFilter{cfg: cfg, challenges: challenges}
}

// Check loads p's detail page and reports whether it passes the filter.
// When it does, the returned FilteredProduct carries the page's specification fields.
func (f *AttributeFilter) Check(ctx context.Context, p models.Product) (models.FilteredProduct, bool, error) {
	doc, err := f.openDetail(ctx, p.Link)
	if err != nil {
		return models.FilteredProduct{}, false, err
	}

	value, ok := MatchesAttribute(doc, f.cfg.FilterAttribute, f.cfg.FilterKeyword)
	if !ok {
		slog.InfoContext(ctx, "product does not match filter",
			"asin", p.ASIN, "attribute", f.cfg.FilterAttribute, "keyword", f.cfg.FilterKeyword)
		return models.FilteredProduct{}, false, nil
	}
	slog.InfoContext(ctx, "product matches filter", "asin", p.ASIN, "value", value)
	observability.ProductsFiltered.Inc()
	return BuildFilteredProduct(p, doc), true, nil
}

func (f *AttributeFilter) openDetail(ctx context.Context, link string) (*goquery.Document, error) {
	load := func(ctx context.Context) error {
		if err := chromedp.Run(ctx, chromedp.Navigate(link)); err != nil {
			return fmt.Errorf("%w: navigate %s: %w", ErrDetailUnavailable, link, err)
		}
		observability.PagesVisited.WithLabelValues("detail").Inc()
		return utils.Pause(ctx, f.cfg.PageDelay)
	}
	title := func(ctx context.Context) (int, error) {
		return WaitAny(ctx, f.cfg.WaitTimeout, DetailReadySelector)
	}
	if _, err := landPage(ctx, f.cfg.PageTimeout, f.challenges, load, title); err != nil {
		if errors.Is(err, ErrDetailUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDetailUnavailable, err)
	}

	pageCtx, cancel := context.WithTimeout(ctx, f.cfg.PageTimeout)
	defer cancel()

	// The overview table hides most rows until expanded.
	if n, err := ClickAll(pageCtx, OverviewExpanderToggle); err == nil && n > 0 {
		_ = utils.Pause(pageCtx, config.Delay{Min: 500 * time.Millisecond, Max: time.Second})
	}
	return Snapshot(pageCtx)
}
