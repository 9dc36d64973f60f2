package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/observability"
	"github.com/khajiev13/amazon-crawler/scraper"
	"github.com/khajiev13/amazon-crawler/services"
	"github.com/khajiev13/amazon-crawler/utils"
)

func run(ctx context.Context, cfg config.Config, runID string) error {
	printBanner(cfg)

	started := time.Now()
	report, err := services.Run(ctx, cfg, scraper.NewConsoleResolver(os.Stdin, os.Stdout))

	if cfg.MetricsFile != "" {
		if werr := observability.WriteTextfile(cfg.MetricsFile); werr != nil {
			slog.Error("failed to write metrics", "path", cfg.MetricsFile, "err", werr)
		}
	}
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	if cfg.SummaryFile != "" {
		summary := utils.RunSummary{
			RunID:      runID,
			SearchTerm: cfg.SearchTerm,
			StartedAt:  started,
			FinishedAt: time.Now(),
			OutFile:    cfg.OutFile,
			Stats:      report.Stats,
		}
		if err := utils.WriteJSON(cfg.SummaryFile, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		slog.Info("wrote run summary", "path", cfg.SummaryFile)
	}

	printSummary(os.Stdout, report.Stats)
	return nil
}

func setupLogging(w io.Writer, verbose bool, runID string) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("run", runID))
}

func printBanner(cfg config.Config) {
	slog.Info("╔═══════════════════════════════════════════════════╗")
	slog.Info("║          Amazon Product & Review Crawler          ║")
	slog.Info("╚═══════════════════════════════════════════════════╝")
	switch {
	case cfg.ASINFile != "":
		slog.Info("reviews for ASIN list", "file", cfg.ASINFile)
	case cfg.InputFile != "":
		slog.Info("products from file", "file", cfg.InputFile)
	default:
		slog.Info("search", "term", cfg.SearchTerm, "pages", cfg.MaxPages, "output", cfg.OutFile)
	}
	if cfg.FilterKeyword != "" {
		slog.Info("filter", "attribute", cfg.FilterAttribute, "keyword", cfg.FilterKeyword)
	}
	if cfg.ScrapeReview || cfg.ASINFile != "" {
		slog.Info("reviews",
			"max_products", cfg.MaxProducts,
			"max_reviews", cfg.MaxReviews,
			"last_n_days", cfg.RecentDays,
			"dir", cfg.ReviewsDir,
			"domains", strings.Join(cfg.Domains, ","),
			"credentials", cfg.HasCredentials(),
		)
	}
}

func printSummary(w io.Writer, stats utils.SummaryStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Crawl summary")
	t.AppendRows([]table.Row{
		{"Products found", stats.TotalProducts},
		{"Products matching filter", stats.FilteredProducts},
		{"Products reviewed", stats.ProductsReviewed},
		{"Products failed", stats.ProductsFailed},
		{"Reviews collected", stats.TotalReviews},
		{"Average rating", fmt.Sprintf("%.2f", stats.AverageRating)},
		{"Verified purchases", fmt.Sprintf("%.0f%%", stats.VerifiedShare*100)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(stats.ReviewsPerProduct) == 0 {
		return
	}
	p := table.NewWriter()
	p.SetOutputMirror(w)
	p.AppendHeader(table.Row{"ASIN", "Title", "Reviews", "File / Error"})
	for _, r := range stats.ReviewsPerProduct {
		where := r.File
		if r.Error != "" {
			where = "ERROR: " + utils.Truncate(r.Error, 60)
		}
		p.AppendRow(table.Row{r.ASIN, utils.Truncate(r.Title, 40), r.Count, where})
	}
	p.SetStyle(table.StyleRounded)
	p.Render()
}
