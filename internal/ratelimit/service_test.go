package ratelimit

import (
	"context"
	"testing"

	"voicebank-server/internal/observability"
)

func TestCheckAllowsUpToLimit(t *testing.T) {
	svc := NewService(nil, 3, observability.NewLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := svc.Check(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if result.Remaining != 3-i-1 {
			t.Errorf("expected remaining %d, got %d", 3-i-1, result.Remaining)
		}
	}

	result, err := svc.Check(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Error("request over the limit should be denied")
	}
	if result.RetryAfterMs <= 0 {
		t.Errorf("expected positive retry-after, got %d", result.RetryAfterMs)
	}
}

func TestCheckIsolatesCallers(t *testing.T) {
	svc := NewService(nil, 1, observability.NewLogger())
	ctx := context.Background()

	if result, _ := svc.Check(ctx, "10.0.0.1"); !result.Allowed {
		t.Fatal("first caller should be allowed")
	}
	if result, _ := svc.Check(ctx, "10.0.0.2"); !result.Allowed {
		t.Error("second caller should have its own window")
	}
	if result, _ := svc.Check(ctx, "10.0.0.1"); result.Allowed {
		t.Error("first caller should now be limited")
	}
}
