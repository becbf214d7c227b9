package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Texture allocation metrics
	TextureAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpgpu_texture_allocations_total",
		Help: "Total number of texture allocations by role",
	}, []string{"role"})

	TextureAllocationTexels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gpgpu_texture_allocation_texels",
		Help: "Texel count of the most recently allocated texture",
	})

	// Transfer metrics
	TransferBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpgpu_transfer_bytes_total",
		Help: "Total bytes moved between host and texture memory by direction",
	}, []string{"direction"})

	TransferDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gpgpu_transfer_duration_ms",
		Help:    "Duration of upload and download operations in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15), // 10us to ~160ms
	}, []string{"op"})

	TransferErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpgpu_transfer_errors_total",
		Help: "Total number of failed transfer operations by op",
	}, []string{"op"})
)
