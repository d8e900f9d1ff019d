// Package middlewares holds the router middlewares: CORS for the web
// client and the shared-secret gate for cron-triggered endpoints.
package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/api/respond"
)

func CORSMiddleware() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Api-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// APIKeyAuth authorizes cron-provider calls with either a bearer token
// or an x-api-key header/query parameter. An empty configured secret
// leaves the endpoint open; that insecure fallback is logged on every
// request so it cannot go unnoticed in production.
func APIKeyAuth(secret string) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		if secret == "" {
			zlog.Logger.Warn().Str("path", c.Request.URL.Path).Msg("endpoint called without a configured API secret; allowing unauthenticated access")
			c.Next()
			return
		}

		if presentedKey(c) != secret {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func presentedKey(c *ginext.Context) string {
	if auth := c.Request.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if key := c.Request.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	return c.Query("api_key")
}
