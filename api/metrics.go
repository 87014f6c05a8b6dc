package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "job_insights",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	metricRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "job_insights",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	metricStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "job_insights",
		Name:      "store_errors_total",
		Help:      "Record store fetch failures by error code.",
	}, []string{"code"})
	metricRecordsFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "job_insights",
		Name:      "records_fetched",
		Help:      "Records returned per fetch.",
		Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000},
	})
	metricAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "job_insights",
		Name:      "analyses_total",
		Help:      "Analyses computed by view.",
	}, []string{"view"})
)

func observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		metricRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
