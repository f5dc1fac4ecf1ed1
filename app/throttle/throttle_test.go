package throttle

import (
	"context"
	"testing"
	"time"
)

func TestHostThrottle_DisabledNeverBlocks(t *testing.T) {
	throttle := NewHostThrottle(false, 0.001, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 20; i++ {
		if err := throttle.Acquire(ctx, "example.com"); err != nil {
			t.Fatalf("Expected disabled throttle to never block, got: %v", err)
		}
	}
	if throttle.HostCount() != 0 {
		t.Errorf("Expected no limiters created while disabled, got %d", throttle.HostCount())
	}
}

func TestHostThrottle_BurstThenBlock(t *testing.T) {
	throttle := NewHostThrottle(true, 0.1, 2)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := throttle.Acquire(ctx, "example.com"); err != nil {
			t.Fatalf("Expected burst acquire %d to succeed, got: %v", i, err)
		}
	}

	// Third acquire must suspend until cancelled: next token is ~10s away.
	blockedCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := throttle.Acquire(blockedCtx, "example.com"); err == nil {
		t.Error("Expected acquire beyond burst to block until context deadline")
	}
}

func TestHostThrottle_HostsAreIndependent(t *testing.T) {
	throttle := NewHostThrottle(true, 0.1, 1)

	ctx := context.Background()
	if err := throttle.Acquire(ctx, "a.example.com"); err != nil {
		t.Fatalf("Expected first host acquire to succeed, got: %v", err)
	}
	// A different host has its own bucket and must not be starved.
	if err := throttle.Acquire(ctx, "b.example.com"); err != nil {
		t.Fatalf("Expected second host acquire to succeed, got: %v", err)
	}
	if throttle.HostCount() != 2 {
		t.Errorf("Expected 2 per-host limiters, got %d", throttle.HostCount())
	}
}

func TestHostOf(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://Feeds.Example.com/rss?x=1", "feeds.example.com"},
		{"http://example.com:8080/feed", "example.com:8080"},
		{"://bad", ""},
	}
	for _, tc := range cases {
		if got := HostOf(tc.url); got != tc.want {
			t.Errorf("HostOf(%q): Expected %q, got %q", tc.url, tc.want, got)
		}
	}
}
