package monitoring

import (
	"strconv"
	"student_performance_backend/internal/evaluation"
	"student_performance_backend/internal/util"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ReportsGenerated 报表生成结果: generated / skipped / failed
	ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Performance reports processed, by period and outcome",
		},
		[]string{"period", "status"},
	)

	ReportCategories = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_category_total",
			Help: "Generated performance reports, by period and category",
		},
		[]string{"period", "category"},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ReportsGenerated)
		prometheus.MustRegister(ReportCategories)

		// 预先创建各等级的时间序列，未出现的等级也以 0 暴露
		for _, period := range []string{util.PeriodWeekly, util.PeriodMonthly} {
			for _, c := range evaluation.Categories() {
				ReportCategories.WithLabelValues(period, string(c))
			}
		}
	})
}

// ObserveReport 只统计已知等级，避免任意标签值
func ObserveReport(period, status, category string) {
	ReportsGenerated.WithLabelValues(period, status).Inc()
	if knownCategory(category) {
		ReportCategories.WithLabelValues(period, category).Inc()
	}
}

func knownCategory(category string) bool {
	for _, c := range evaluation.Categories() {
		if string(c) == category {
			return true
		}
	}
	return false
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
