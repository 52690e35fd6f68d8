package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	snapshotKey     = "snapshot_scope"

	// CacheHeader tells clients whether the projection was served from the snapshot cache.
	CacheHeader = "X-Timetable-Cache"
)

// WithResponseMeta attaches a metadata map to the request. Handlers fill it while serving
// and the envelope's meta block carries it back.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		meta := ensureMeta(c)
		if _, ok := meta["processing_time_ms"]; !ok {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether the snapshot behind the response came from cache. The
// header is written immediately, so call it before the body.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
	if c == nil {
		return
	}
	if hit {
		c.Header(CacheHeader, "HIT")
	} else {
		c.Header(CacheHeader, "MISS")
	}
}

// SetSnapshotScope records the snapshot scope a projection was built from.
func SetSnapshotScope(c *gin.Context, scope string) {
	if scope == "" {
		return
	}
	ensureMeta(c)[snapshotKey] = scope
}

// ExtractMeta returns the metadata map stored on the context, or nil outside
// WithResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if value, ok := c.Get(responseMetaKey); ok {
		if meta, ok := value.(map[string]interface{}); ok {
			return meta
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
