package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the request id to and from the client.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware tags every request with an id, reusing the client's when
// one is supplied.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value extracts the request id from the gin context, empty if unset.
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, isStr := v.(string); isStr {
			return id
		}
	}
	return ""
}
