package scraper

import "errors"

var (
	ErrSearchFailed       = errors.New("search failed")
	ErrReviewsUnavailable = errors.New("reviews page unavailable")
	ErrLoginFailed        = errors.New("login failed")
	ErrNoCredentials      = errors.New("login required but no credentials configured")
	ErrDetailUnavailable  = errors.New("product detail page unavailable")
)
