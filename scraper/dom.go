package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/utils"
)

const pollInterval = 250 * time.Millisecond

// Snapshot captures the current page as a goquery document whose Url is the
// tab's location, so relative links can be resolved.
func Snapshot(ctx context.Context) (*goquery.Document, error) {
	var html, location string
	if err := chromedp.Run(ctx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("snapshot page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	if u, err := url.Parse(location); err == nil {
		doc.Url = u
	}
	return doc, nil
}

// WaitAny polls until one of the selectors is present and returns its index.
// Earlier selectors win when several are present at once.
func WaitAny(ctx context.Context, timeout time.Duration, selectors ...string) (int, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		for i, sel := range selectors {
			if Exists(waitCtx, sel) {
				return i, nil
			}
		}
		select {
		case <-waitCtx.Done():
			return -1, fmt.Errorf("wait for %s: %w", strings.Join(selectors, " | "), waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// landPage runs one navigation. load gets a page deadline of its own, any
// challenge is then cleared with no deadline, and ready starts a fresh page
// deadline after that.
func landPage(
	ctx context.Context,
	timeout time.Duration,
	challenges ChallengeHandler,
	load func(ctx context.Context) error,
	ready func(ctx context.Context) (int, error),
) (int, error) {
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	err := load(loadCtx)
	cancel()
	if err != nil {
		return -1, err
	}

	if _, err := challenges.Handle(ctx); err != nil {
		return -1, err
	}

	readyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return ready(readyCtx)
}

// Exists reports whether selector matches anything on the current page.
// Lookup errors count as "not present".
func Exists(ctx context.Context, selector string) bool {
	var found bool
	err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelector(%q) !== null`, selector),
		&found,
	))
	return err == nil && found
}

// ClickAll clicks every element matching selector from page script and
// returns how many were clicked.
func ClickAll(ctx context.Context, selector string) (int, error) {
	var clicked int
	err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const nodes = Array.from(document.querySelectorAll(%q));
			nodes.forEach(n => n.click());
			return nodes.length;
		})();
	`, selector), &clicked))
	return clicked, err
}

// TypeHuman clears the field then types text one rune at a time with a
// random pause between keystrokes.
func TypeHuman(ctx context.Context, selector, text string, delay config.Delay) error {
	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("focus %s: %w", selector, err)
	}
	for _, r := range text {
		if err := chromedp.Run(ctx, chromedp.SendKeys(selector, string(r), chromedp.ByQuery)); err != nil {
			return fmt.Errorf("type into %s: %w", selector, err)
		}
		if err := utils.Pause(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}
