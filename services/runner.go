package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/models"
	"github.com/khajiev13/amazon-crawler/scraper"
	"github.com/khajiev13/amazon-crawler/storage"
	"github.com/khajiev13/amazon-crawler/utils"
)

// Report is everything a finished run produced.
type Report struct {
	Products []models.Product
	Filtered []models.FilteredProduct
	Results  []models.ProductResult
	Reviews  []models.Review
	Stats    utils.SummaryStats
}

// Crawler is the set of browser-backed components a run is wired from.
type Crawler struct {
	Search  Searcher
	Filter  Filter
	Opener  ReviewOpener
	Reviews ReviewSource
}

// NewCrawler wires the browser components against one session.
func NewCrawler(cfg config.Config, resolver scraper.Resolver) Crawler {
	challenges := scraper.ChallengeHandler{Resolver: resolver}
	return Crawler{
		Search: scraper.NewNavigator(cfg, challenges),
		Filter: scraper.NewAttributeFilter(cfg, challenges),
		Opener: scraper.NewReviewNavigator(cfg, challenges),
		Reviews: PagedReviews{
			Extractor: scraper.ReviewExtractor{MaxReviews: cfg.MaxReviews, RecentDays: cfg.RecentDays},
			Pager:     scraper.NewBrowserReviewPager(cfg, challenges),
		},
	}
}

// Run launches the browser, performs one crawl and always closes the
// browser before returning.
func Run(ctx context.Context, cfg config.Config, resolver scraper.Resolver) (Report, error) {
	if cfg.GlobalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.GlobalTimeout)
		defer cancel()
	}

	session, err := utils.NewSession(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		slog.Info("closing browser")
		session.Close()
	}()

	return Execute(session.Context(), cfg, NewCrawler(cfg, resolver))
}

// Execute runs the product phase, then the review phase when asked for.
// With an ASIN list configured the product phase is skipped.
func Execute(ctx context.Context, cfg config.Config, c Crawler) (Report, error) {
	var report Report
	filtering := cfg.FilterKeyword != ""

	var targets []ReviewTarget
	if cfg.ASINFile != "" {
		asins, err := storage.LoadASINs(cfg.ASINFile)
		if err != nil {
			return report, err
		}
		if len(asins) == 0 {
			return report, fmt.Errorf("no ASINs in %s", cfg.ASINFile)
		}
		targets = TargetsFromASINs(cfg.ReviewsDir, asins)
		for _, t := range targets {
			report.Products = append(report.Products, t.Product)
		}
	} else {
		phase, err := ScrapeProducts(ctx, cfg, c.Search, c.Filter)
		if err != nil {
			return report, err
		}
		report.Products = phase.Products
		report.Filtered = phase.Filtered
		targets = TargetsFromProducts(cfg.ReviewsDir, phase.ForReviews(filtering), cfg.MaxProducts)
	}

	if (cfg.ScrapeReview || cfg.ASINFile != "") && len(targets) > 0 {
		slog.InfoContext(ctx, "collecting reviews", "products", len(targets))
		report.Results, report.Reviews = ScrapeReviews(ctx, cfg, targets, c.Opener, c.Reviews)
	}

	report.Stats = utils.BuildSummaryStats(len(report.Products), len(report.Filtered), report.Results, report.Reviews)
	slog.InfoContext(ctx, "crawling completed",
		"products", len(report.Products),
		"filtered", len(report.Filtered),
		"reviews", len(report.Reviews),
	)
	return report, nil
}
