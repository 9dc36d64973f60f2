package utils

import (
	"sort"
	"strconv"
	"strings"

	"github.com/khajiev13/amazon-crawler/models"
)

// ProductReviewCount is how many reviews one product contributed.
type ProductReviewCount struct {
	ASIN  string `json:"asin"`
	Title string `json:"title"`
	Count int    `json:"count"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// SummaryStats aggregates a crawl for the final report.
type SummaryStats struct {
	TotalProducts     int                  `json:"total_products"`
	FilteredProducts  int                  `json:"filtered_products"`
	ProductsReviewed  int                  `json:"products_reviewed"`
	ProductsFailed    int                  `json:"products_failed"`
	TotalReviews      int                  `json:"total_reviews"`
	AverageRating     float64              `json:"average_rating"`
	VerifiedShare     float64              `json:"verified_share"`
	ReviewsPerProduct []ProductReviewCount `json:"reviews_per_product"`
	MostHelpful       []models.Review      `json:"most_helpful"`
}

// BuildSummaryStats folds the per-product review results into SummaryStats.
// reviews holds every review collected, across products.
func BuildSummaryStats(products, filtered int, results []models.ProductResult, reviews []models.Review) SummaryStats {
	stats := SummaryStats{
		TotalProducts:    products,
		FilteredProducts: filtered,
		TotalReviews:     len(reviews),
	}

	perProduct := make([]ProductReviewCount, 0, len(results))
	for _, r := range results {
		row := ProductReviewCount{
			ASIN:  r.Product.ASIN,
			Title: r.Product.Title,
			Count: r.Reviews,
			File:  r.OutputFile,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
			stats.ProductsFailed++
		} else {
			stats.ProductsReviewed++
		}
		perProduct = append(perProduct, row)
	}
	sort.SliceStable(perProduct, func(i, j int) bool {
		return perProduct[i].Count > perProduct[j].Count
	})
	stats.ReviewsPerProduct = perProduct

	if len(reviews) == 0 {
		return stats
	}

	var ratingSum float64
	rated, verified := 0, 0
	for _, r := range reviews {
		if v, ok := ParseRatingValue(r.Rating); ok {
			ratingSum += v
			rated++
		}
		if r.VerifiedPurchase {
			verified++
		}
	}
	if rated > 0 {
		stats.AverageRating = ratingSum / float64(rated)
	}
	stats.VerifiedShare = float64(verified) / float64(len(reviews))

	helpful := make([]models.Review, len(reviews))
	copy(helpful, reviews)
	sort.SliceStable(helpful, func(i, j int) bool {
		return helpful[i].HelpfulCount > helpful[j].HelpfulCount
	})
	if len(helpful) > 5 {
		helpful = helpful[:5]
	}
	stats.MostHelpful = helpful

	return stats
}

// ParseRatingValue converts an extracted rating such as "4" or "4.5" to a number.
func ParseRatingValue(rating string) (float64, bool) {
	rating = strings.TrimSpace(strings.Replace(rating, ",", ".", 1))
	if rating == "" || rating == models.Unknown {
		return 0, false
	}
	v, err := strconv.ParseFloat(rating, 64)
	if err != nil || v < 0 || v > 5 {
		return 0, false
	}
	return v, true
}
