package curatai

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "curatai_api_request_duration_seconds",
	Help:    "Latency of calls to the CuratAI backend.",
	Buckets: prometheus.DefBuckets,
}, []string{"endpoint", "status"})

func observe(endpoint, status string, d time.Duration) {
	requestDuration.WithLabelValues(endpoint, status).Observe(d.Seconds())
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}
