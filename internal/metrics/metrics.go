// ABOUTME: Prometheus metrics for the keep-alive stream
// ABOUTME: Counters for produced audio, write backpressure histogram and stream state
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gauges
var (
	StreamState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audio_keepalive_stream_state",
		Help: "Streaming driver state (0=initializing, 1=streaming, 2=stopped, 3=failed)",
	})
	Phase = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audio_keepalive_phase_radians",
		Help: "Generator phase after the last written buffer",
	})
)

// Counters
var (
	BuffersWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_keepalive_buffers_written_total",
		Help: "Total sample buffers accepted by the audio sink",
	})
	BytesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_keepalive_bytes_written_total",
		Help: "Total encoded bytes accepted by the audio sink",
	})
	SamplesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_keepalive_samples_generated_total",
		Help: "Total samples produced by the tone generator",
	})
	StreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_keepalive_stream_errors_total",
		Help: "Stream failures by kind (sink unavailable, sink broken, encode)",
	}, []string{"kind"})
)

// Histograms
var (
	WriteBlockSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audio_keepalive_write_block_seconds",
		Help:    "Time a buffer write blocked waiting for the sink",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.25},
	})
)

// Stream error kinds
const (
	KindUnavailable = "unavailable"
	KindBroken      = "broken"
	KindEncode      = "encode"
)

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
