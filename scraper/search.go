package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/observability"
	"github.com/khajiev13/amazon-crawler/utils"
)

// Navigator drives the search box and walks the result pages.
type Navigator struct {
	cfg        config.Config
	challenges ChallengeHandler

	// attempt is one search try; searchOnce unless a test swaps it.
	attempt func(ctx context.Context, term string) error
}

func NewNavigator(cfg config.Config, challenges ChallengeHandler) *Navigator {
	n := &Navigator{cfg: cfg, challenges: challenges}
	n.attempt = n.searchOnce
	return n
}

// HomeURL is the storefront the search starts from.
func HomeURL(domain string) string {
	return fmt.Sprintf("https://www.%s/", domain)
}

// PerformSearch loads the home page and submits term through the search box
// like a person would. It retries a fixed number of times with a growing
// pause between attempts.
func (n *Navigator) PerformSearch(ctx context.Context, term string) error {
	attempts := n.cfg.SearchRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		slog.InfoContext(ctx, "searching", "term", term, "attempt", attempt, "of", attempts)
		lastErr = n.attempt(ctx, term)
		if lastErr == nil {
			return nil
		}
		slog.WarnContext(ctx, "search attempt failed", "attempt", attempt, "err", lastErr)
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			backoff := time.Duration(attempt) * n.cfg.SearchBackoff
			if err := utils.Pause(ctx, config.Delay{Min: backoff}); err != nil {
				break
			}
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrSearchFailed, attempts, lastErr)
}

func (n *Navigator) searchOnce(ctx context.Context, term string) error {
	home := HomeURL(n.cfg.PrimaryDomain())
	load := func(ctx context.Context) error {
		if err := chromedp.Run(ctx, chromedp.Navigate(home)); err != nil {
			return fmt.Errorf("navigate %s: %w", home, err)
		}
		observability.PagesVisited.WithLabelValues("home").Inc()
		return utils.Pause(ctx, n.cfg.PageDelay)
	}
	searchBox := func(ctx context.Context) (int, error) {
		return WaitAny(ctx, n.cfg.WaitTimeout, SearchBoxSelector)
	}
	if _, err := landPage(ctx, n.cfg.PageTimeout, n.challenges, load, searchBox); err != nil {
		return fmt.Errorf("search box: %w", err)
	}

	pageCtx, cancel := context.WithTimeout(ctx, n.cfg.PageTimeout)
	defer cancel()

	if err := TypeHuman(pageCtx, SearchBoxSelector, term, n.cfg.KeystrokeDelay); err != nil {
		return err
	}
	if err := utils.Pause(pageCtx, config.Delay{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond}); err != nil {
		return err
	}
	if err := chromedp.Run(pageCtx, chromedp.SendKeys(SearchBoxSelector, kb.Enter, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}

	if _, err := WaitAny(pageCtx, n.cfg.WaitTimeout, ResultsReadySelector); err != nil {
		return fmt.Errorf("search results: %w", err)
	}
	observability.PagesVisited.WithLabelValues("results").Inc()
	return nil
}
