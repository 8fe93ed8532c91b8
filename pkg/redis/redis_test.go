package redis

import (
	"context"
	"testing"
	"time"
)

// Every feature must hold its no-op contract on a nil client; the server
// boots without Redis and callers never branch on availability themselves.
func TestNilClientDegradesToNoOps(t *testing.T) {
	var c *Client
	ctx := context.Background()

	c.PublishChange(ctx, "shifts", "update", "shift-1")

	events := c.SubscribeChanges(ctx, "shifts")
	select {
	case _, ok := <-events:
		if ok {
			t.Error("nil client must not deliver events")
		}
	case <-time.After(time.Second):
		t.Error("nil client subscription channel should be closed immediately")
	}

	if err := c.BlacklistToken(ctx, "jti-1", time.Minute); err != nil {
		t.Errorf("blacklist on nil client should be a no-op: %v", err)
	}
	revoked, err := c.IsBlacklisted(ctx, "jti-1")
	if err != nil || revoked {
		t.Errorf("nil client must report nothing revoked, got (%v, %v)", revoked, err)
	}

	allowed, err := c.CheckRateLimit(ctx, "rl:test", 1, time.Minute)
	if err != nil || !allowed {
		t.Errorf("nil client must allow all requests, got (%v, %v)", allowed, err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("closing a nil client should succeed: %v", err)
	}
}
