package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Identity metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter
	SessionsCreated     prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Cart metrics
	CartsCreatedCounter    *prometheus.CounterVec
	CartOperationsCounter  *prometheus.CounterVec
	CheckoutBlockedCounter prometheus.Counter

	// Product popularity metrics
	ProductViewsCounter *prometheus.CounterVec
)

// InitMetrics registers the collectors on reg under the given name prefix.
// Pass prometheus.DefaultRegisterer in production so /metrics exposes them.
func InitMetrics(prefix string, reg prometheus.Registerer) {
	factory := promauto.With(reg)

	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of bearer token validations",
		},
	)

	AuthSuccessCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful bearer token validations",
		},
	)

	AuthErrorsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of rejected bearer tokens",
		},
	)

	SessionsCreated = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_sessions_created_total",
			Help: "Total number of anonymous sessions issued",
		},
	)

	DbOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	CartsCreatedCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_carts_created_total",
			Help: "Total number of carts created, by identity kind",
		},
		[]string{"identity"},
	)

	CartOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_cart_operations_total",
			Help: "Total number of cart mutations, by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	CheckoutBlockedCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_checkout_empty_cart_total",
			Help: "Total number of checkout attempts with an empty cart",
		},
	)

	ProductViewsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_views_total",
			Help: "Total number of product detail views",
		},
		[]string{"product_slug", "category"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation.
// Usage: defer prometheus.TrackDBOperation("cart_upsert_item")(time.Now())
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordCartCreated increments the carts created counter for "user" or "session"
func RecordCartCreated(identity string) {
	if CartsCreatedCounter == nil {
		return
	}
	CartsCreatedCounter.WithLabelValues(identity).Inc()
}

// RecordCartOperation increments the counter for cart mutations
func RecordCartOperation(operation, outcome string) {
	if CartOperationsCounter == nil {
		return
	}
	CartOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordProductView increments the counter for product views
func RecordProductView(productSlug string, category string) {
	if ProductViewsCounter == nil {
		return
	}
	ProductViewsCounter.WithLabelValues(productSlug, category).Inc()
}

// RecordCheckoutBlocked counts checkouts turned away for an empty cart
func RecordCheckoutBlocked() {
	if CheckoutBlockedCounter == nil {
		return
	}
	CheckoutBlockedCounter.Inc()
}

// RecordSessionCreated counts newly issued anonymous sessions
func RecordSessionCreated() {
	if SessionsCreated == nil {
		return
	}
	SessionsCreated.Inc()
}

// RecordAuth counts a bearer token validation attempt and its result
func RecordAuth(ok bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if ok {
		AuthSuccessCounter.Inc()
	} else {
		AuthErrorsCounter.Inc()
	}
}
