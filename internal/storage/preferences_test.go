package storage

import (
	"context"
	"errors"
	"testing"
)

func TestPreferences_SetAndGet_String(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	if err := store.SetPreference(ctx, uid, "canal_principal", "vsl"); err != nil {
		t.Fatalf("SetPreference() error: %v", err)
	}

	var got string
	if err := store.GetPreference(ctx, uid, "canal_principal", &got); err != nil {
		t.Fatalf("GetPreference() error: %v", err)
	}
	if got != "vsl" {
		t.Errorf("got %q, want %q", got, "vsl")
	}
}

func TestPreferences_SetAndGet_Int(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	if err := store.SetPreference(ctx, uid, "default_quantity", 3); err != nil {
		t.Fatalf("SetPreference() error: %v", err)
	}

	var got int
	if err := store.GetPreference(ctx, uid, "default_quantity", &got); err != nil {
		t.Fatalf("GetPreference() error: %v", err)
	}
	if got != 3 {
		t.Errorf("got %d, want %d", got, 3)
	}
}

func TestPreferences_SetAndGet_IntSlice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	ids := []int64{15, 30, 60}
	if err := store.SetPreference(ctx, uid, "video_durations", ids); err != nil {
		t.Fatalf("SetPreference() error: %v", err)
	}

	var got []int64
	if err := store.GetPreference(ctx, uid, "video_durations", &got); err != nil {
		t.Fatalf("GetPreference() error: %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("got length %d, want %d", len(got), len(ids))
	}
	for i, v := range got {
		if v != ids[i] {
			t.Errorf("got[%d] = %d, want %d", i, v, ids[i])
		}
	}
}

func TestPreferences_SetOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	if err := store.SetPreference(ctx, uid, "key", "v1"); err != nil {
		t.Fatalf("first SetPreference() error: %v", err)
	}
	if err := store.SetPreference(ctx, uid, "key", "v2"); err != nil {
		t.Fatalf("second SetPreference() error: %v", err)
	}

	var got string
	if err := store.GetPreference(ctx, uid, "key", &got); err != nil {
		t.Fatalf("GetPreference() error: %v", err)
	}
	if got != "v2" {
		t.Errorf("got %q, want %q", got, "v2")
	}
}

func TestPreferences_GetNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	var got string
	err := store.GetPreference(ctx, uid, "nonexistent", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestGetAllPreferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	if err := store.SetPreference(ctx, uid, "a", "alpha"); err != nil {
		t.Fatalf("SetPreference(a) error: %v", err)
	}
	if err := store.SetPreference(ctx, uid, "b", 99); err != nil {
		t.Fatalf("SetPreference(b) error: %v", err)
	}

	prefs, err := store.GetAllPreferences(ctx, uid)
	if err != nil {
		t.Fatalf("GetAllPreferences() error: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("got %d preferences, want 2", len(prefs))
	}
	if string(prefs["a"]) != `"alpha"` {
		t.Errorf("prefs[a] = %s, want %q", prefs["a"], `"alpha"`)
	}
	if string(prefs["b"]) != `99` {
		t.Errorf("prefs[b] = %s, want %q", prefs["b"], `99`)
	}
}

func TestGetAllPreferences_Empty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := createTestUser(t, store, "ana@example.com")

	prefs, err := store.GetAllPreferences(ctx, uid)
	if err != nil {
		t.Fatalf("GetAllPreferences() error: %v", err)
	}
	if len(prefs) != 0 {
		t.Errorf("got %d preferences, want 0", len(prefs))
	}
}

func TestPreferences_ScopedByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ana := createTestUser(t, store, "ana@example.com")
	bia := createTestUser(t, store, "bia@example.com")

	if err := store.SetPreference(ctx, ana, "canal_principal", "vsl"); err != nil {
		t.Fatalf("SetPreference(ana) error: %v", err)
	}
	if err := store.SetPreference(ctx, bia, "canal_principal", "email"); err != nil {
		t.Fatalf("SetPreference(bia) error: %v", err)
	}

	var got string
	if err := store.GetPreference(ctx, ana, "canal_principal", &got); err != nil {
		t.Fatalf("GetPreference(ana) error: %v", err)
	}
	if got != "vsl" {
		t.Errorf("ana got %q, want %q", got, "vsl")
	}

	prefs, err := store.GetAllPreferences(ctx, bia)
	if err != nil {
		t.Fatalf("GetAllPreferences(bia) error: %v", err)
	}
	if string(prefs["canal_principal"]) != `"email"` {
		t.Errorf("bia prefs = %s, want %q", prefs["canal_principal"], `"email"`)
	}
}
