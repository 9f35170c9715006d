package metrics

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/internal/scheduler"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const namespace = "projectdesk"

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New builds a private registry with the Go runtime collectors, the HTTP
// request metrics, the entity counts read from conn and the background check results.
func New(conn *gorm.DB) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		newEntityCollector(conn),
		newCheckCollector(scheduler.Results),
	)

	return m
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.requests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.duration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// entityCollector reports the stored row counts at scrape time.
type entityCollector struct {
	conn *gorm.DB
	desc *prometheus.Desc
}

func newEntityCollector(conn *gorm.DB) *entityCollector {
	return &entityCollector{
		conn: conn,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "entities"),
			"Stored entities by kind.",
			[]string{"kind"}, nil,
		),
	}
}

func (c *entityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entityCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := services.CountEntities(c.conn)
	if err != nil {
		log.Printf("Failed to count entities for metrics: %v", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts.Projects), "projects")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts.Tasks), "tasks")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(counts.Comments), "comments")
}

// checkCollector exposes the latest result of each scheduled check.
type checkCollector struct {
	results  func() map[string]scheduler.Result
	up       *prometheus.Desc
	duration *prometheus.Desc
}

func newCheckCollector(results func() map[string]scheduler.Result) *checkCollector {
	return &checkCollector{
		results: results,
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "check", "up"),
			"Whether the latest run of a scheduled check succeeded.",
			[]string{"check"}, nil,
		),
		duration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "check", "duration_seconds"),
			"Duration of the latest run of a scheduled check.",
			[]string{"check"}, nil,
		),
	}
}

func (c *checkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.duration
}

func (c *checkCollector) Collect(ch chan<- prometheus.Metric) {
	for name, result := range c.results() {
		up := 0.0
		if result.OK() {
			up = 1
		}
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up, name)
		ch <- prometheus.MustNewConstMetric(c.duration, prometheus.GaugeValue, result.ResponseTime.Seconds(), name)
	}
}
