package ratelimit

import (
	"fmt"
	"testing"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		key      string
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			key:      "test",
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			key:      "test",
			calls:    5,
			wantPass: 2,
		},
		{
			name:     "different keys are independent",
			rps:      1,
			burst:    1,
			key:      "key1",
			calls:    1,
			wantPass: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow(tt.key) {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	// Exhaust key1
	rl.Allow("key1")
	if rl.Allow("key1") {
		t.Error("key1 should be exhausted")
	}

	// key2 should still work
	if !rl.Allow("key2") {
		t.Error("key2 should be independent and allowed")
	}
}

func TestKeyedRateLimiter_KeyCapResets(t *testing.T) {
	rl := New(1, 1)
	rl.maxKeys = 10

	// Exhaust a key, then flood with distinct keys past the cap.
	rl.Allow("victim")
	if rl.Allow("victim") {
		t.Fatal("victim should be exhausted")
	}

	for i := 0; i < 20; i++ {
		rl.Allow(fmt.Sprintf("addr-%d", i))
	}

	if rl.Len() > rl.maxKeys {
		t.Errorf("tracked keys = %d, want <= %d", rl.Len(), rl.maxKeys)
	}

	// The reset refilled the victim's bucket.
	if !rl.Allow("victim") {
		t.Error("victim should be allowed after reset")
	}
}
