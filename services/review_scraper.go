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

// ReviewOpener brings the reviews of one product on screen.
type ReviewOpener interface {
	Open(ctx context.Context, asin string) (scraper.State, scraper.LoginOutcome, error)
}

// ReviewSource reads the reviews of the product currently on screen.
type ReviewSource interface {
	Reviews(ctx context.Context) []models.Review
}

// ReviewTarget is one product to collect reviews for and where to put them.
type ReviewTarget struct {
	Product models.Product
	File    string
}

// TargetsFromProducts names review files after each product's position and
// title: reviews/reviews_product_1_<title>.csv.
func TargetsFromProducts(dir string, products []models.Product, max int) []ReviewTarget {
	if max > 0 && len(products) > max {
		products = products[:max]
	}
	targets := make([]ReviewTarget, 0, len(products))
	for i, p := range products {
		base := fmt.Sprintf("reviews_product_%d", i+1)
		targets = append(targets, ReviewTarget{
			Product: p,
			File:    storage.ReviewFilename(dir, base, storage.SanitizeTitle(p.Title)),
		})
	}
	return targets
}

// TargetsFromASINs names review files after the ASIN: reviews/reviews_<ASIN>.csv.
func TargetsFromASINs(dir string, asins []string) []ReviewTarget {
	targets := make([]ReviewTarget, 0, len(asins))
	for _, asin := range asins {
		targets = append(targets, ReviewTarget{
			Product: models.Product{Title: asin, ASIN: asin},
			File:    storage.ReviewFilename(dir, "reviews", asin),
		})
	}
	return targets
}

// ScrapeReviews visits every target in order. A product whose reviews can't
// be opened is recorded with its error and skipped. All collected reviews
// are returned alongside the per-product results.
func ScrapeReviews(ctx context.Context, cfg config.Config, targets []ReviewTarget, opener ReviewOpener, source ReviewSource) ([]models.ProductResult, []models.Review) {
	results := make([]models.ProductResult, 0, len(targets))
	var all []models.Review

	for i, t := range targets {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "stopping review collection", "err", ctx.Err())
			break
		}
		slog.InfoContext(ctx, "processing product",
			"index", i+1, "of", len(targets),
			"asin", t.Product.ASIN, "title", utils.Truncate(t.Product.Title, 50))

		res := models.ProductResult{Product: t.Product}
		state, outcome, err := opener.Open(ctx, t.Product.ASIN)
		if err != nil {
			slog.WarnContext(ctx, "failed to open reviews, skipping",
				"asin", t.Product.ASIN, "state", state, "login", outcome, "err", err)
			res.Err = err
			results = append(results, res)
		} else {
			reviews := source.Reviews(ctx)
			saved, err := storage.SaveReviews(t.File, reviews)
			if err != nil {
				res.Err = err
			} else if saved {
				res.OutputFile = t.File
			}
			res.Reviews = len(reviews)
			all = append(all, reviews...)
			results = append(results, res)
			slog.InfoContext(ctx, "extracted reviews", "asin", t.Product.ASIN, "count", len(reviews))
		}

		if i < len(targets)-1 {
			slog.InfoContext(ctx, "taking a short break before next product")
			if err := utils.Pause(ctx, cfg.ProductDelay); err != nil {
				break
			}
		}
	}
	return results, all
}

// PagedReviews reads reviews through the extractor, paging with pager.
type PagedReviews struct {
	Extractor scraper.ReviewExtractor
	Pager     scraper.ReviewPager
}

func (p PagedReviews) Reviews(ctx context.Context) []models.Review {
	return p.Extractor.Extract(ctx, p.Pager)
}
