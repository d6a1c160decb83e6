//go:build integration

package ratelimit

import (
	"context"
	"testing"
)

// TestAllow_Redis exhausts a bucket against a real Redis.
// This test requires Redis to be running.
func TestAllow_Redis(t *testing.T) {
	ctx := context.Background()

	l, err := New(ctx, "redis://localhost:6379", 1, 3)
	if err != nil {
		t.Skipf("Skipping integration test: Redis not available: %v", err)
	}
	defer l.Close()

	user := "integration-user"
	if err := l.client.Del(ctx, keyPrefix+user).Err(); err != nil {
		t.Fatalf("clearing bucket: %v", err)
	}

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow(ctx, user).Allowed {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed %d requests, want 3 (burst)", allowed)
	}
	res := l.Allow(ctx, user)
	if res.Allowed || res.RetryAfter <= 0 {
		t.Fatalf("expected rejection with retry-after, got %+v", res)
	}
}
