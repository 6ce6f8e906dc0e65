package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/etnz/pdv"
)

// metrics of a Server, kept in its own registry so that several servers can
// live in one process.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	sales    *prometheus.CounterVec
	revenue  *prometheus.CounterVec
	notices  *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdv_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		sales: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdv_sales_total",
			Help: "Checkouts by payment method.",
		}, []string{"payment"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdv_sales_revenue",
			Help: "Amount sold by payment method.",
		}, []string{"payment"}),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdv_notices_total",
			Help: "Session notices by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.requests, m.sales, m.revenue, m.notices)
	return m
}

func (m *metrics) observeSale(s pdv.Sale) {
	payment := string(s.Payment)
	m.sales.WithLabelValues(payment).Inc()
	m.revenue.WithLabelValues(payment).Add(s.Total().Decimal().InexactFloat64())
}

func (m *metrics) observeNotice(n pdv.Notice) {
	m.notices.WithLabelValues(string(n.Kind)).Inc()
}

// countRequests counts the requests by route template, unknown routes
// included as "unmatched".
func (m *metrics) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
