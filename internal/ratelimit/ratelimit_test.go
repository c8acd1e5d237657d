package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllow_IndependentKeys(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("10.0.0.1") {
		t.Error("first request for a key should be allowed")
	}
	if krl.Allow("10.0.0.1") {
		t.Error("second immediate request should exceed burst")
	}
	// A different key has its own bucket.
	if !krl.Allow("10.0.0.2") {
		t.Error("fresh key should be allowed")
	}
}

func TestAllow_Refill(t *testing.T) {
	krl := New(100, 1)
	defer krl.Stop()

	krl.Allow("key")
	time.Sleep(25 * time.Millisecond)
	if !krl.Allow("key") {
		t.Error("bucket should have refilled")
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	krl := New(0.001, 1)
	defer krl.Stop()

	krl.Allow("key")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := krl.Wait(ctx, "key"); err == nil {
		t.Error("Wait should fail when context expires before a token is available")
	}
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
