package scraper

// CSS selectors used across the scraper.
// Centralising them makes future updates trivial.
const (
	// Home page / search
	SearchBoxSelector     = `#twotabsearchtextbox`
	ResultsReadySelector  = `div.s-result-item`
	ResultCardSelector    = `div.s-result-item[data-component-type="s-search-result"]`
	ResultCardFallback    = `div[data-asin]:not([data-asin=""])`
	TitleLinkSelector     = `a.a-link-normal.s-line-clamp-2.s-link-style.a-text-normal`
	TitleLinkAltSelector  = `a.a-link-normal.s-underline-text.s-underline-link-text.s-link-style.a-text-normal`
	TitleLinkLastResort   = `h2 a`
	ResultsNextSelector   = `a.s-pagination-next`
	ResultsNextDisabled   = `s-pagination-disabled`
	ResultsPaginationWrap = `.s-pagination-strip`

	// Product detail page
	DetailReadySelector     = `#productTitle`
	OverviewExpanderToggle  = `#poExpander a[data-action="a-expander-toggle"], #productOverview_feature_div a.a-expander-header`
	SystemInfoRowsSelector  = `#productOverview_feature_div tr, #poExpander tr`
	ComparisonRowsSelector  = `#HLCXComparisonTable tr`
	SpecTableRowsSelector   = `#productDetails_techSpec_section_1 tr, #productDetails_detailBullets_sections1 tr, #technicalSpecifications_section_1 tr, #prodDetails table tr`
	DetailBulletsSelector   = `#detailBullets_feature_div li`
	InsightsSummarySelector = `#product-summary p, [data-hook="cr-insights-widget-summary"] p`
	InsightsAspectSelector  = `#aspect-button-list button, [data-hook="cr-insights-aspect-link"]`

	// Reviews page
	ReviewListSelector = `#cm_cr-review_list`
	ReviewNextItem     = `ul.a-pagination li.a-last`
	ReviewNextLink     = `ul.a-pagination li.a-last a`
	ReviewNextDisabled = `a-disabled`
	TranslateSelector  = `a[data-hook="cr-translate-these-reviews-link"], span[data-hook="cr-translate-this-review-link"] a`

	// Sign-in flow
	LoginEmailSelector    = `#ap_email`
	LoginContinueSelector = `#continue`
	LoginPasswordSelector = `#ap_password`
	LoginSubmitSelector   = `#signInSubmit`
	LoginErrorSelector    = `#auth-error-message-box`
	LoginCaptchaSelector  = `#auth-captcha-image, #captchacharacters`
	LoginMFASelector      = `#auth-mfa-otpcode`
	LoginVerifySelector   = `#cvf-page-content, input[name="cvf_captcha_input"]`

	// Challenges
	CaptchaInputSelector = `#captchacharacters`
	CaptchaFormSelector  = `form[action*="validateCaptcha"]`

	// Pages showing any of these are real content. Their text is shopper
	// written and is not scanned for challenge wording.
	ContentPageSelector = ReviewListSelector + `, ` + ResultCardSelector + `, ` + DetailReadySelector
)

// Review node selectors, tried in order until one matches.
var ReviewNodeSelectors = []string{
	`li[data-hook="review"][role="listitem"]`,
	`div[data-hook="review"]`,
	`li[class*="review"][data-hook="review"]`,
}

// Per-field review selectors.
const (
	ReviewerNameSelector  = `span.a-profile-name`
	ReviewDateSelector    = `span[data-hook="review-date"]`
	ReviewTitleLink       = `a[data-hook="review-title"]`
	ReviewTitleSpan       = `span[data-hook="review-title"]`
	ReviewStarSelector    = `i[data-hook="review-star-rating"]`
	ReviewStarAltSelector = `i[data-hook="cmps-review-star-rating"]`
	ReviewBodySelector    = `span[data-hook="review-body"]`
	ReviewImageSelector   = `.review-image-tile`
	VerifiedBadgeSelector = `span[data-hook="avp-badge"]`
	HelpfulVoteSelector   = `.cr-vote-text`
	HelpfulAltSelector    = `span[data-hook="helpful-vote-statement"]`
)

// Text markers of an interstitial page. "robot" alone also matches robot
// vacuum listings, so only the challenge phrasing is used.
var ChallengeKeywords = []string{
	"CAPTCHA",
	"not a robot",
	"unusual activity",
	"verification",
	"Type the characters you see",
}
