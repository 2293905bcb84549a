package ratelimiter

import (
	"testing"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"go.uber.org/zap"
)

func newTestLimiter(requests int, frame time.Duration) (*RateLimiter, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rl := NewRateLimiter(config.RateLimiterConfig{RequestsPerTimeFrame: requests, TimeFrame: frame, Enabled: true}, zap.NewNop().Sugar())
	rl.now = func() time.Time { return now }

	return rl, &now
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("1.1.1.1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retry := rl.Allow("1.1.1.1")
	if ok {
		t.Fatal("fourth request should be limited")
	}
	if retry <= 0 || retry > time.Minute {
		t.Errorf("unexpected retry after %v", retry)
	}

	if ok, _ := rl.Allow("2.2.2.2"); !ok {
		t.Error("other clients should not be affected")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl, now := newTestLimiter(2, time.Minute)

	rl.Allow("ip")
	rl.Allow("ip")
	if ok, _ := rl.Allow("ip"); ok {
		t.Fatal("expected limit to be reached")
	}

	*now = now.Add(45 * time.Second)
	if ok, _ := rl.Allow("ip"); !ok {
		t.Error("expected a token to be refilled before the window ends")
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl, now := newTestLimiter(1, time.Minute)

	rl.Allow("a")
	*now = now.Add(2 * time.Minute)
	rl.Allow("b")

	if _, ok := rl.visitors["a"]; ok {
		t.Error("expected idle client to be swept")
	}
	if _, ok := rl.visitors["b"]; !ok {
		t.Error("expected active client to be kept")
	}
}
