package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/khajiev13/amazon-crawler/models"
)

// SaveProducts writes records to path, header first. An empty input still
// produces a file holding the product header.
func SaveProducts(path string, records []models.Record) error {
	header := models.ProductHeader
	if len(records) > 0 {
		header = records[0].Header()
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	if err := writeCSV(path, header, rows); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	slog.Info("saved products", "count", len(records), "path", path)
	return nil
}

// SaveReviews writes reviews to path and reports whether a file was written.
// Nothing is written for an empty input.
func SaveReviews(path string, reviews []models.Review) (bool, error) {
	if len(reviews) == 0 {
		slog.Warn("no reviews to save", "path", path)
		return false, nil
	}
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, r.Row())
	}
	if err := writeCSV(path, models.ReviewHeader, rows); err != nil {
		return false, fmt.Errorf("save reviews: %w", err)
	}
	slog.Info("saved reviews", "count", len(reviews), "path", path)
	return true, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// ReviewFilename builds "<dir>/<base>_<token>.csv".
func ReviewFilename(dir, base, token string) string {
	return filepath.Join(dir, base+"_"+token+".csv")
}

// SanitizeTitle keeps the first 30 runes of title and replaces anything
// that is not a letter or digit with "_".
func SanitizeTitle(title string) string {
	r := []rune(title)
	if len(r) > 30 {
		r = r[:30]
	}
	for i, c := range r {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			r[i] = '_'
		}
	}
	return string(r)
}

// LoadProducts reads a product CSV written by SaveProducts, or any CSV with
// title, link and an asin (or identifier) column. A blank ASIN is derived
// from the link.
func LoadProducts(path string) ([]models.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load products %s: %w", path, err)
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	titleIdx, okTitle := col["title"]
	linkIdx, okLink := col["link"]
	if !okTitle || !okLink {
		return nil, fmt.Errorf("load products %s: header needs title and link columns", path)
	}
	asinIdx, okASIN := col["asin"]
	if !okASIN {
		asinIdx, okASIN = col["identifier"]
	}

	var products []models.Product
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load products %s: %w", path, err)
		}
		asin := ""
		if okASIN {
			asin = field(rec, asinIdx)
		}
		p := models.NewProduct(field(rec, titleIdx), field(rec, linkIdx), asin)
		if p.ASIN == "" {
			slog.Warn("skipping product without ASIN", "title", p.Title, "link", p.Link)
			continue
		}
		products = append(products, p)
	}
	slog.Info("loaded products", "count", len(products), "path", path)
	return products, nil
}

// LoadASINs reads one ASIN per line, or the first column of a CSV. Blank
// lines, "#" comments and an "asin" header are skipped. Values are upper-cased
// and anything that is not a ten character catalog key is dropped.
func LoadASINs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load asins: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var asins []string
	seen := map[string]bool{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load asins %s: %w", path, err)
		}
		v := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(field(rec, 0), "\ufeff")))
		if v == "" || v == "ASIN" || seen[v] {
			continue
		}
		if !models.ValidASIN(v) {
			slog.Warn("skipping malformed ASIN", "value", v, "path", path)
			continue
		}
		seen[v] = true
		asins = append(asins, v)
	}
	slog.Info("loaded ASINs", "count", len(asins), "path", path)
	return asins, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// FilteredFilename is where products that passed the attribute filter are
// written: "smarttvs.csv" becomes "smarttvs_filtered.csv".
func FilteredFilename(out string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "_filtered" + ext
}
