package middlewares

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

const corsMaxAge = "600"

// CORSMiddleware echoes allowed origins ("*" allows any) and answers preflights.
// Tokens travel in the Authorization header, so credentials are never allowed.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	anyOrigin := slices.Contains(allowedOrigins, "*")

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		ctx.Writer.Header().Add("Vary", "Origin")

		allowed := origin != "" && (anyOrigin || slices.Contains(allowedOrigins, origin))
		if allowed {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Expose-Headers", "ETag,Location,X-Request-Id")
		}

		preflight := ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != ""
		if !preflight {
			ctx.Next()
			return
		}

		if allowed {
			h := ctx.Writer.Header()
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization,Content-Type,If-None-Match,X-Request-Id")
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
