package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every crawler metric. It is written out once at the end of a
// run for the node-exporter textfile collector.
var Registry = prometheus.NewRegistry()

var (
	ProductsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_products_scraped_total",
			Help: "Products extracted from search result pages",
		},
	)
	ProductsFiltered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_products_filtered_total",
			Help: "Products that matched the attribute filter",
		},
	)
	ReviewsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_reviews_scraped_total",
			Help: "Reviews extracted across all products",
		},
	)
	PagesVisited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_visited_total",
			Help: "Pages loaded, by kind",
		},
		[]string{"kind"},
	)
	Challenges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_challenges_total",
			Help: "Security challenges that required manual resolution",
		},
	)
	LoginOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_login_outcomes_total",
			Help: "Scripted login attempts, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		ProductsScraped,
		ProductsFiltered,
		ReviewsScraped,
		PagesVisited,
		Challenges,
		LoginOutcomes,
	)
}

// WriteTextfile dumps the registry in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
