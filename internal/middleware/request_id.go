package middleware

import (
	"strings"
	"time"

	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = util.RequestIDHeader

// RequestIDMiddleware reuses the caller's X-Request-Id or generates one, exposes it on the
// gin and request contexts and echoes it back. Each request is logged once it completes.
func (m Middleware) RequestIDMiddleware(ctx *gin.Context) {
	rid := strings.TrimSpace(ctx.GetHeader(RequestIDHeader))
	if rid == "" {
		rid = uuid.NewString()
	}

	ctx.Set("requestId", rid)
	ctx.Request = ctx.Request.WithContext(util.WithRequestID(ctx.Request.Context(), rid))
	ctx.Writer.Header().Set(RequestIDHeader, rid)

	start := time.Now()
	ctx.Next()

	m.app.Logger.Infow("request",
		"requestId", rid,
		"method", ctx.Request.Method,
		"path", ctx.Request.URL.Path,
		"status", ctx.Writer.Status(),
		"latency", time.Since(start),
		"clientIp", ctx.ClientIP(),
	)
}
