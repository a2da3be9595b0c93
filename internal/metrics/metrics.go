package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// ReconcileOperations counts aggregate writes by operation and outcome.
	ReconcileOperations *prometheus.CounterVec
	// ReconcileChildren counts child rows written by child type and action.
	ReconcileChildren *prometheus.CounterVec
	ReferenceWarnings *prometheus.CounterVec

	DBOperationDuration *prometheus.HistogramVec

	initOnce sync.Once
)

// Init registers every collector on reg under prefix. Only the first call
// has an effect.
func Init(prefix string, reg prometheus.Registerer) {
	initOnce.Do(func() {
		factory := promauto.With(reg)

		HTTPRequestsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)
		HTTPRequestDuration = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)
		ReconcileOperations = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_reconcile_operations_total",
				Help: "Total number of aggregate reconcile operations",
			},
			[]string{"operation", "outcome"},
		)
		ReconcileChildren = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_reconcile_children_total",
				Help: "Child rows created, updated or deleted by reconcile",
			},
			[]string{"child", "action"},
		)
		ReferenceWarnings = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_reconcile_reference_warnings_total",
				Help: "Association ids dropped because they did not resolve",
			},
			[]string{"relation"},
		)
		DBOperationDuration = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		)
	})
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if HTTPRequestsTotal == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func RecordReconcile(operation, outcome string) {
	if ReconcileOperations != nil {
		ReconcileOperations.WithLabelValues(operation, outcome).Inc()
	}
}

func RecordChildren(child, action string, n int) {
	if ReconcileChildren != nil && n > 0 {
		ReconcileChildren.WithLabelValues(child, action).Add(float64(n))
	}
}

func RecordReferenceWarning(relation string) {
	if ReferenceWarnings != nil {
		ReferenceWarnings.WithLabelValues(relation).Inc()
	}
}

// TrackDBOperation returns a func that observes the elapsed time since
// start, meant for defer.
func TrackDBOperation(operationType string) func(start time.Time) {
	return func(start time.Time) {
		if DBOperationDuration != nil {
			DBOperationDuration.WithLabelValues(operationType).Observe(time.Since(start).Seconds())
		}
	}
}
