package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderName is the request id header, echoed back on every response so
// clients can quote it when reporting a failed call.
const HeaderName = "X-Request-ID"

const contextKey = "request_id"

// Middleware tags each request with an id, keeping one already supplied by
// the client or an upstream proxy.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(HeaderName, id)

		c.Next()
	}
}

// Value returns the id assigned to the current request, or an empty string
// when the middleware has not run.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
