package middleware

import (
	appcontext "github.com/SeakMengs/OpenSight/internal/app_context"
	ratelimiter "github.com/SeakMengs/OpenSight/internal/rate_limiter"
)

type Middleware struct {
	rateLimiter *ratelimiter.RateLimiter
	app         *appcontext.Application
}

func NewMiddleware(app *appcontext.Application,
	rateLimiter *ratelimiter.RateLimiter,
) *Middleware {
	return &Middleware{app: app, rateLimiter: rateLimiter}
}
