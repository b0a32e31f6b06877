package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// IsJSON reports whether r declares an application/json body; parameters such
// as charset are allowed.
func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// RequireJSON rejects non-JSON writes with 415. Only mount it on routes that
// have no authorization step; protected handlers check the content type when
// they bind, after ownership is settled.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !IsJSON(c.Request) {
				abortWithError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}
