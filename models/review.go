package models

import (
	"strconv"
	"strings"
)

// ReviewHeader is the column set of every review file.
var ReviewHeader = []string{
	"customer_name",
	"country",
	"date",
	"title",
	"rating",
	"text",
	"verified_purchase",
	"helpful_count",
	"image_urls",
}

// ReviewImage pairs the thumbnail shown in the list with its full-size variant.
type ReviewImage struct {
	ThumbnailURL string `json:"thumbnail_url"`
	FullSizeURL  string `json:"full_size_url"`
}

// Review is one customer review. Use NewReview so every field starts at its default.
type Review struct {
	CustomerName     string        `json:"customer_name"`
	Country          string        `json:"country"`
	Date             string        `json:"date"`
	Title            string        `json:"title"`
	Rating           string        `json:"rating"`
	Text             string        `json:"text"`
	Images           []ReviewImage `json:"images"`
	VerifiedPurchase bool          `json:"verified_purchase"`
	HelpfulCount     int           `json:"helpful_count"`
}

func NewReview() Review {
	return Review{
		CustomerName: Unknown,
		Country:      Unknown,
		Date:         Unknown,
		Title:        Unknown,
		Rating:       Unknown,
		Text:         Unknown,
		Images:       []ReviewImage{},
	}
}

// ImageURLs flattens the full-size image URLs into one comma-joined column.
func (r Review) ImageURLs() string {
	urls := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		urls = append(urls, img.FullSizeURL)
	}
	return strings.Join(urls, ",")
}

func (r Review) Header() []string {
	return append([]string(nil), ReviewHeader...)
}

func (r Review) Row() []string {
	return []string{
		r.CustomerName,
		r.Country,
		r.Date,
		r.Title,
		r.Rating,
		r.Text,
		strconv.FormatBool(r.VerifiedPurchase),
		strconv.Itoa(r.HelpfulCount),
		r.ImageURLs(),
	}
}
