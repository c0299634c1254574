package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	CartItemsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_items_added_total",
			Help: "Total number of add-to-cart operations",
		},
	)

	// result: ok / insufficient
	StockReservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_reservations_total",
			Help: "Total number of order reservations by result",
		},
		[]string{"result"},
	)

	// kind: unparseable / fractional
	StockQuantityCoercions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_quantity_coercions_total",
			Help: "Total number of stock quantities coerced in lenient mode",
		},
		[]string{"kind"},
	)

	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"from", "to"},
	)

	// result: created / updated / skipped / failed
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Total number of catalog import rows by result",
		},
		[]string{"result"},
	)
)

// HTTPリクエストの件数と時間
func Middleware(serviceName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			statusStr := strconv.Itoa(status)
			method := c.Request().Method
			path := c.Path()

			RequestCounter.WithLabelValues(serviceName, method, path, statusStr).Inc()
			RequestDuration.WithLabelValues(serviceName, method, path, statusStr).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
