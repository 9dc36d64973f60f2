package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/models"
	"github.com/khajiev13/amazon-crawler/storage"
	"github.com/khajiev13/amazon-crawler/utils"
)

// Searcher runs a search and walks its result pages.
type Searcher interface {
	PerformSearch(ctx context.Context, term string) error
	CollectProducts(ctx context.Context) ([]models.Product, error)
}

// Filter decides whether a product passes the attribute filter.
type Filter interface {
	Check(ctx context.Context, p models.Product) (models.FilteredProduct, bool, error)
}

// ProductPhase is what the product half of a run produced.
type ProductPhase struct {
	Products []models.Product
	Filtered []models.FilteredProduct
	Loaded   bool
}

// ForReviews returns the products the review phase should visit: the
// filtered ones when a filter ran, otherwise all of them.
func (p ProductPhase) ForReviews(filtering bool) []models.Product {
	if !filtering {
		return p.Products
	}
	out := make([]models.Product, 0, len(p.Filtered))
	for _, f := range p.Filtered {
		out = append(out, f.Product)
	}
	return out
}

// ScrapeProducts loads products from cfg.InputFile when it exists, or
// searches for cfg.SearchTerm and saves the results to cfg.OutFile. When a
// filter keyword is set the products are checked in order until
// cfg.MaxProducts of them matched.
func ScrapeProducts(ctx context.Context, cfg config.Config, search Searcher, filter Filter) (ProductPhase, error) {
	var phase ProductPhase

	products, loaded, err := loadInput(cfg.InputFile)
	if err != nil {
		return phase, err
	}
	if loaded {
		phase.Loaded = true
		slog.InfoContext(ctx, "loaded products from file", "path", cfg.InputFile, "count", len(products))
	} else {
		slog.InfoContext(ctx, "starting search", "term", cfg.SearchTerm, "output", cfg.OutFile)
		if err := search.PerformSearch(ctx, cfg.SearchTerm); err != nil {
			return phase, err
		}
		products, err = search.CollectProducts(ctx)
		if err != nil {
			return phase, fmt.Errorf("collect products: %w", err)
		}
		slog.InfoContext(ctx, "found products", "count", len(products))
		if err := storage.SaveProducts(cfg.OutFile, records(products)); err != nil {
			return phase, err
		}
	}
	phase.Products = products

	if cfg.FilterKeyword == "" || filter == nil {
		return phase, nil
	}

	phase.Filtered = FilterProducts(ctx, cfg, filter, products)
	filtered := make([]models.Record, 0, len(phase.Filtered))
	for _, f := range phase.Filtered {
		filtered = append(filtered, f)
	}
	if len(filtered) > 0 {
		if err := storage.SaveProducts(storage.FilteredFilename(cfg.OutFile), filtered); err != nil {
			return phase, err
		}
	}
	return phase, nil
}

// FilterProducts checks products one by one and keeps the matches. A
// product whose page fails to load is skipped.
func FilterProducts(ctx context.Context, cfg config.Config, filter Filter, products []models.Product) []models.FilteredProduct {
	var out []models.FilteredProduct
	for i, p := range products {
		if cfg.MaxProducts > 0 && len(out) >= cfg.MaxProducts {
			break
		}
		if ctx.Err() != nil {
			break
		}
		slog.InfoContext(ctx, "checking product", "index", i+1, "of", len(products),
			"asin", p.ASIN, "title", utils.Truncate(p.Title, 50))

		fp, ok, err := filter.Check(ctx, p)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "skipping product", "asin", p.ASIN, "err", err)
		case ok:
			out = append(out, fp)
		}

		if i < len(products)-1 {
			if err := utils.Pause(ctx, cfg.ProductDelay); err != nil {
				break
			}
		}
	}
	slog.InfoContext(ctx, "filter finished", "matched", len(out), "checked", len(products))
	return out
}

func loadInput(path string) ([]models.Product, bool, error) {
	if path == "" {
		return nil, false, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Warn("input file not found, searching instead", "path", path)
		return nil, false, nil
	}
	products, err := storage.LoadProducts(path)
	if err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func records(products []models.Product) []models.Record {
	out := make([]models.Record, 0, len(products))
	for _, p := range products {
		out = append(out, p)
	}
	return out
}
