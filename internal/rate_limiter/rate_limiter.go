package ratelimiter

import (
	"sync"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client. A client may burst the whole
// RequestsPerTimeFrame at once, after which tokens refill evenly over TimeFrame.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	timeFrame time.Duration
	lastSweep time.Time
	now       func() time.Time
	logger    *zap.SugaredLogger
}

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *RateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("development")
	}

	timeFrame := cfg.TimeFrame
	if timeFrame <= 0 {
		timeFrame = time.Minute
	}

	burst := max(cfg.RequestsPerTimeFrame, 1)

	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(burst) / timeFrame.Seconds()),
		burst:     burst,
		timeFrame: timeFrame,
		now:       time.Now,
		logger:    logger,
	}
}

// Allow reports whether key may make a request now. When it may not, the returned
// duration says how long until the next request would be accepted.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.timeFrame
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		rl.logger.Debugf("Rate limit exceeded for %s, retry after %v", key, delay)
		return false, delay
	}

	return true, 0
}

// drops clients idle for longer than a full window, their bucket would be full again anyway
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.timeFrame {
		return
	}
	rl.lastSweep = now

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.timeFrame {
			delete(rl.visitors, key)
		}
	}
}
