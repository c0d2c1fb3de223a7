package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Total number of orders created",
	})

	OrderNumberConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_number_conflicts_total",
		Help: "Order creations rejected because the generated order number was already taken",
	})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_changes_total",
		Help: "Order status transitions by target status",
	}, []string{"status"})

	OrderAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_amount_total",
		Help: "Sum of total_amount over created orders",
	})

	StockUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_updates_total",
		Help: "Total number of product stock updates",
	})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_validation_failures_total",
		Help: "Writes rejected by entity validation",
	}, []string{"entity"})

	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cache_requests_total",
		Help: "Product cache lookups by result",
	}, []string{"result"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_published_total",
		Help: "Domain events handed to the broker by type and outcome",
	}, []string{"type", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
