// Package metrics provides Prometheus metrics for the site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login results.
const (
	LoginSuccess       = "success"
	LoginDenied        = "denied"
	LoginInvalidState  = "invalid_state"
	LoginProviderError = "provider_error"
	LoginError         = "error"
)

// Blog write operations.
const (
	BlogCreate = "create"
	BlogUpdate = "update"
	BlogDelete = "delete"
)

var (
	// LoginsTotal counts OAuth callbacks by outcome.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "logins_total",
			Help:      "Total number of OAuth login callbacks by result",
		},
		[]string{"result"},
	)

	LogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "logouts_total",
			Help:      "Total number of logouts",
		},
	)

	// BlogPostsTotal counts blog write operations.
	BlogPostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "blog_posts_total",
			Help:      "Total number of blog post writes by operation",
		},
		[]string{"op"},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "site",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
	)
)

func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

func RecordLogout() {
	LogoutsTotal.Inc()
}

func RecordBlogPost(op string) {
	BlogPostsTotal.WithLabelValues(op).Inc()
}

func RecordRateLimited() {
	RateLimitedTotal.Inc()
}
