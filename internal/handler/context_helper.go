package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thilinahansana/university-scheduler-console/internal/middleware"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/upstream"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// backendContext returns the request context carrying the caller's bearer token so
// backend calls run under the caller's identity.
func backendContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if token := c.GetString(middleware.ContextTokenKey); token != "" {
		ctx = upstream.WithToken(ctx, token)
	}
	return ctx
}

func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

func respondCached(c *gin.Context, status int, data interface{}, scope string, hit bool, start time.Time) {
	middleware.SetCacheHit(c, hit)
	middleware.SetSnapshotScope(c, scope)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, status, data, meta)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "index must be a non-negative integer")
	}
	return index, nil
}
