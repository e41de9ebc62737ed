package cache

import (
	"context"
	"testing"
)

func TestGenerateDataHash(t *testing.T) {
	rows := []map[string]string{
		{"game": "Cash3", "number": "123"},
		{"game": "Cash3", "number": "456"},
	}

	first := GenerateDataHash(rows)
	second := GenerateDataHash(rows)
	if first != second {
		t.Errorf("hash not stable: %s vs %s", first, second)
	}
	if len(first) != 16 {
		t.Errorf("hash length = %d, want 16 hex chars", len(first))
	}

	rows[1]["number"] = "789"
	changed := GenerateDataHash(rows)
	if changed == first {
		t.Error("hash unchanged after input mutation")
	}
}

func TestCacheDegradesWithoutRedis(t *testing.T) {
	c := NewForecastCache(nil)
	ctx := context.Background()

	if _, hit := c.GetReferenceSet(ctx, "sub-1", "Cash3"); hit {
		t.Error("reference set hit without a redis client")
	}
	if _, hit := c.GetLastRun(ctx, "GA-STARTER"); hit {
		t.Error("last-run hit without a redis client")
	}
	if c.IsInRunCooldown(ctx, "GA-STARTER") {
		t.Error("cooldown reported without a redis client")
	}
	if err := c.InvalidateReferenceSet(ctx, "sub-1", "Cash3"); err != nil {
		t.Errorf("invalidate without redis should be a no-op, got %v", err)
	}
}
