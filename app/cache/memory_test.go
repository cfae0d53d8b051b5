package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v" {
		t.Errorf("Expected 'v', got '%s'", got)
	}
}

func TestMemory_MissingKeyIsEmpty(t *testing.T) {
	m := NewMemory()

	got, err := m.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty string for missing key, got '%s'", got)
	}
}

func TestMemory_ExpiredEntryIsEvicted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	m.Now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected expired entry to read as missing, got '%s'", got)
	}
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, _ := m.Get(ctx, "k")
	if got != "" {
		t.Errorf("Expected deleted key to be missing, got '%s'", got)
	}
}
