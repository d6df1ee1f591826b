package temperature

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStore_GetDefaults(t *testing.T) {
	s := NewMemoryStore()

	temp, ok, err := s.Get(context.Background(), "living_room")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatal("expected living_room to be a known zone")
	}
	if temp != 22 {
		t.Errorf("expected default 22, got %d", temp)
	}
}

func TestMemoryStore_UnknownZone(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, _ := s.Get(context.Background(), "garage"); ok {
		t.Error("expected garage to be unknown")
	}
	if ok, _ := s.Set(context.Background(), "garage", 18); ok {
		t.Error("expected set on unknown zone to report not ok")
	}
}

func TestMemoryStore_SetThenGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ok, err := s.Set(ctx, "bedroom", 18)
	if err != nil || !ok {
		t.Fatalf("expected set to succeed, ok=%v err=%v", ok, err)
	}

	temp, _, _ := s.Get(ctx, "bedroom")
	if temp != 18 {
		t.Errorf("expected 18, got %d", temp)
	}
}

func TestMemoryStore_SetDoesNotLeakAcrossZones(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Set(ctx, "kitchen", 30); err != nil {
		t.Fatal(err)
	}

	temp, _, _ := s.Get(ctx, "office")
	if temp != 21 {
		t.Errorf("expected office untouched at 21, got %d", temp)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(temp int) {
			defer wg.Done()
			_, _ = s.Set(ctx, "living_room", temp)
		}(i)
		go func() {
			defer wg.Done()
			_, _, _ = s.Get(ctx, "living_room")
		}()
	}
	wg.Wait()

	if _, ok, _ := s.Get(ctx, "living_room"); !ok {
		t.Error("zone disappeared under concurrent access")
	}
}

func TestKnownZones_StableOrder(t *testing.T) {
	zones := KnownZones()
	want := []string{"bathroom", "bedroom", "kitchen", "living_room", "office"}
	if len(zones) != len(want) {
		t.Fatalf("expected %d zones, got %d", len(want), len(zones))
	}
	for i := range want {
		if zones[i] != want[i] {
			t.Errorf("zone %d: expected %s, got %s", i, want[i], zones[i])
		}
	}
}
