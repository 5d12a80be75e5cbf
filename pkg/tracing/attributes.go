package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for core operations
const (
	// DEM attributes
	AttrDemPath   = "dem.tile.path"
	AttrDemSource = "dem.tile.source"

	// Cache attributes
	AttrCacheHit = "dem.cache.hit"
	AttrCacheKey = "dem.cache.key"

	// Background job attributes
	AttrJobID          = "job.id"
	AttrJobPool        = "job.pool"
	AttrJobDescription = "job.description"
	AttrJobStatus      = "job.status"
)

// CacheAttributes returns attributes for DEM cache operations
func CacheAttributes(hit bool, key string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheKey, key),
	}
}

// JobAttributes returns attributes for background job execution
func JobAttributes(id, pool, description string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrJobID, id),
		attribute.String(AttrJobPool, pool),
		attribute.String(AttrJobDescription, description),
	}
}
