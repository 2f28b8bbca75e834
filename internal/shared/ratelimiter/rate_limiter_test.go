package ratelimiter

import (
	"testing"
	"time"
)

func TestRateLimiter_UnderLimitDoesNotBlock(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Second)

	start := time.Now()
	for i := 0; i < 5; i++ {
		rl.WaitIfNeeded()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("calls under the limit should not block, took %v", elapsed)
	}
}

func TestRateLimiter_OverLimitWaits(t *testing.T) {
	t.Parallel()

	interval := 200 * time.Millisecond
	rl := NewRateLimiter(2, interval)

	rl.WaitIfNeeded()
	rl.WaitIfNeeded()

	// 3回目は上限超過なのでintervalの残りを待つ
	start := time.Now()
	rl.WaitIfNeeded()
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected the limiter to sleep, only waited %v", elapsed)
	}
}

func TestRateLimiter_CountResetsAfterInterval(t *testing.T) {
	t.Parallel()

	interval := 100 * time.Millisecond
	rl := NewRateLimiter(1, interval)

	rl.WaitIfNeeded()
	time.Sleep(interval + 20*time.Millisecond)

	start := time.Now()
	rl.WaitIfNeeded()
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("count should reset after the interval, waited %v", elapsed)
	}
}
