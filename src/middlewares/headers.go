package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("Referrer-Policy", "no-referrer")
	ctx.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	ctx.Header("Cache-Control", "no-store")
	ctx.Next()
}

// RequestID echoes X-Request-ID or assigns a new one.
func RequestID(ctx *gin.Context) {
	id := ctx.GetHeader("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	ctx.Set("request_id", id)
	ctx.Header("X-Request-ID", id)
	ctx.Next()
}
