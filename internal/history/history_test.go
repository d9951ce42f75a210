package history

import (
	"testing"
	"time"
)

func TestTouchAndLastUsed(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := Touch("user@api.internal"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := LastUsed()
	if err != nil {
		t.Fatalf("last used: %v", err)
	}
	if got["user@api.internal"] <= 0 {
		t.Fatalf("expected timestamp for user@api.internal, got %+v", got)
	}
}

func TestSortDestinationsRecent(t *testing.T) {
	destinations := []string{"db", "api", "cache"}
	now := time.Now().Unix()
	sorted := SortDestinationsRecent(destinations, map[string]int64{
		"api": now,
		"db":  now - 60,
	})
	if sorted[0] != "api" {
		t.Fatalf("expected api first, got %s", sorted[0])
	}
	if sorted[len(sorted)-1] != "cache" {
		t.Fatalf("expected cache (never touched) last, got %s", sorted[len(sorted)-1])
	}
}
