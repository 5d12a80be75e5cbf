package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Service name for metrics
	ServiceName = "slavgps"
)

var (
	// DEM cache metrics
	DemTilesLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slavgps_dem_tiles_loaded_total",
			Help: "Total number of DEM tiles read from disk",
		},
		[]string{"source", "status"},
	)

	DemTileLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slavgps_dem_tile_load_duration_seconds",
			Help:    "DEM tile load duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"source"},
	)

	DemCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slavgps_dem_cache_tiles",
			Help: "Number of DEM tiles currently held in the cache",
		},
	)

	DemCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slavgps_dem_cache_hits_total",
			Help: "Total number of DEM cache hits",
		},
	)

	DemCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slavgps_dem_cache_misses_total",
			Help: "Total number of DEM cache misses",
		},
	)

	// Elevation query metrics
	ElevationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slavgps_elevation_lookups_total",
			Help: "Total number of elevation lookups against the DEM cache",
		},
		[]string{"method", "status"},
	)

	// Background job metrics
	JobsSpawned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slavgps_jobs_spawned_total",
			Help: "Total number of background jobs enqueued",
		},
		[]string{"pool"},
	)

	JobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slavgps_jobs_finished_total",
			Help: "Total number of background jobs finished",
		},
		[]string{"pool", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slavgps_job_duration_seconds",
			Help:    "Background job run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0},
		},
		[]string{"pool"},
	)

	JobQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "slavgps_job_queue_depth",
			Help: "Number of jobs waiting in each pool queue",
		},
		[]string{"pool"},
	)

	// Thumbnail pipeline metrics
	ThumbnailsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slavgps_thumbnails_generated_total",
			Help: "Total number of thumbnails materialized",
		},
		[]string{"status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slavgps_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// Helper functions for common metric updates

// RecordDemTileLoad records the outcome of one DEM tile read.
func RecordDemTileLoad(source string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	DemTilesLoaded.WithLabelValues(source, status).Inc()
	if success {
		DemTileLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// RecordElevationLookup records one elevation query against the cache.
func RecordElevationLookup(method string, found bool) {
	status := "miss"
	if found {
		status = "hit"
	}
	ElevationLookups.WithLabelValues(method, status).Inc()
}

// RecordJobFinished records one finished background job.
func RecordJobFinished(pool, status string, duration time.Duration) {
	JobsFinished.WithLabelValues(pool, status).Inc()
	JobDuration.WithLabelValues(pool).Observe(duration.Seconds())
}

// RecordError increments the error counter for a component
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
