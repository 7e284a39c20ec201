package stubs

import (
	"context"
	"errors"
	"testing"
)

func TestMockSlot_MissingKey(t *testing.T) {
	slot := NewMockSlot()

	data, ok, err := slot.Get(context.Background(), "bookList")
	if err != nil {
		t.Fatalf("Expected no error for missing key, got %v", err)
	}
	if ok {
		t.Error("Expected ok=false for missing key")
	}
	if data != nil {
		t.Errorf("Expected nil data, got %q", data)
	}
}

func TestMockSlot_SetOverwrites(t *testing.T) {
	slot := NewMockSlot()
	ctx := context.Background()

	if err := slot.Set(ctx, "bookList", []byte(`[1]`)); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	if err := slot.Set(ctx, "bookList", []byte(`[2]`)); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	data, ok, err := slot.Get(ctx, "bookList")
	if err != nil || !ok {
		t.Fatalf("Expected stored value, got ok=%v err=%v", ok, err)
	}
	if string(data) != `[2]` {
		t.Errorf("Expected last write to win, got %s", data)
	}
	if slot.Writes() != 2 {
		t.Errorf("Expected 2 writes, got %d", slot.Writes())
	}
}

func TestMockSlot_ReturnsCopies(t *testing.T) {
	slot := NewMockSlot()
	ctx := context.Background()

	original := []byte(`abc`)
	_ = slot.Set(ctx, "k", original)
	original[0] = 'x'

	data, _, _ := slot.Get(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("Expected stored value to be isolated from caller, got %s", data)
	}
}

func TestMockSlot_InjectedFailures(t *testing.T) {
	slot := NewMockSlot()
	ctx := context.Background()
	boom := errors.New("disk full")

	slot.FailWrites(boom)
	if err := slot.Set(ctx, "k", []byte("v")); !errors.Is(err, boom) {
		t.Errorf("Expected injected write error, got %v", err)
	}

	slot.FailWrites(nil)
	if err := slot.Set(ctx, "k", []byte("v")); err != nil {
		t.Errorf("Expected write to succeed after reset, got %v", err)
	}

	slot.FailReads(boom)
	if _, _, err := slot.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Errorf("Expected injected read error, got %v", err)
	}
}
