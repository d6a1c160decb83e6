package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/nouscopy/nouscopy/internal/models"
)

// newTestDB creates an in-memory SQLite database with migrations applied.
// The database is automatically closed when the test completes.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return db
}

// newTestStore creates an in-memory Store with migrations applied.
// The store is automatically closed when the test completes.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db := newTestDB(t)
	return NewStore(db)
}

// createTestUser inserts a user with the given email and returns its ID.
func createTestUser(t *testing.T, store *Store, email string) string {
	t.Helper()

	u := &models.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: "hash",
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("creating test user %q: %v", email, err)
	}
	return u.ID
}

func TestOpenDatabase_InMemory(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase(:memory:) error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpenDatabase_CreatesDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "deep", "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase(%q) error: %v", dbPath, err)
	}
	defer db.Close()

	// Verify the file was created.
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created at %q: %v", dbPath, err)
	}
}

func TestRunMigrations_AppliesSchema(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase error: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	// Verify expected tables exist by querying sqlite_master.
	expectedTables := []string{
		"users",
		"sessions",
		"copy_history",
		"user_templates",
		"preferences",
		"schema_migrations",
	}

	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}

	// Verify indexes exist.
	expectedIndexes := []string{
		"idx_sessions_user",
		"idx_copy_history_user_created",
		"idx_user_templates_user",
	}

	for _, idx := range expectedIndexes {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q not found: %v", idx, err)
		}
	}

	// Verify migration version was recorded.
	var version int
	err = db.QueryRow("SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	if err != nil {
		t.Fatalf("migration version 1 not recorded: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase error: %v", err)
	}
	defer db.Close()

	// Run migrations twice.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("first RunMigrations error: %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations error: %v", err)
	}

	// Verify only one migration version is recorded (not duplicated).
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 migration records, got %d", count)
	}
}

func TestNewStore(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	if store.DB() != db {
		t.Fatal("NewStore did not store the provided *sql.DB")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // expected in "2006-01-02 15:04:05" format, or "zero"
	}{
		{
			name:  "sqlite format",
			input: "2025-01-15 10:30:00",
			want:  "2025-01-15 10:30:00",
		},
		{
			name:  "RFC3339",
			input: "2025-01-15T10:30:00Z",
			want:  "2025-01-15 10:30:00",
		},
		{
			name:  "invalid",
			input: "not-a-date",
			want:  "zero",
		},
		{
			name:  "empty",
			input: "",
			want:  "zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTime(tt.input)
			if tt.want == "zero" {
				if !got.IsZero() {
					t.Errorf("parseTime(%q) = %v, want zero time", tt.input, got)
				}
				return
			}
			gotStr := got.Format("2006-01-02 15:04:05")
			if gotStr != tt.want {
				t.Errorf("parseTime(%q) = %q, want %q", tt.input, gotStr, tt.want)
			}
		})
	}
}

func TestParseNullTime(t *testing.T) {
	if got := parseNullTime(sql.NullString{}); got != nil {
		t.Errorf("parseNullTime(NULL) = %v, want nil", got)
	}
	if got := parseNullTime(sql.NullString{String: "garbage", Valid: true}); got != nil {
		t.Errorf("parseNullTime(garbage) = %v, want nil", got)
	}

	got := parseNullTime(sql.NullString{String: "2025-01-15 10:30:00", Valid: true})
	if got == nil {
		t.Fatal("parseNullTime returned nil for a valid timestamp")
	}
	if want := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseNullTime = %v, want %v", got, want)
	}
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/010_later.sql":  {Data: []byte("SELECT 10;")},
			"m/002_second.sql": {Data: []byte("SELECT 2;")},
			"m/README.md":      {Data: []byte("ignored")},
		}
		got, err := loadMigrations(fsys, "m")
		if err != nil {
			t.Fatalf("loadMigrations error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d migrations, want 2", len(got))
		}
		if got[0].version != 2 || got[0].name != "second" || got[1].version != 10 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("unnumbered file", func(t *testing.T) {
		fsys := fstest.MapFS{"m/init.sql": {Data: []byte("SELECT 1;")}}
		if _, err := loadMigrations(fsys, "m"); err == nil {
			t.Fatal("expected error for migration without version")
		}
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/003_a.sql": {Data: []byte("SELECT 1;")},
			"m/3_b.sql":   {Data: []byte("SELECT 2;")},
		}
		if _, err := loadMigrations(fsys, "m"); err == nil {
			t.Fatal("expected error for duplicate version")
		}
	})
}

func TestRunMigrations_RecordsNames(t *testing.T) {
	db := newTestDB(t)

	var name string
	if err := db.QueryRow("SELECT name FROM schema_migrations WHERE version = 2").Scan(&name); err != nil {
		t.Fatalf("reading migration 2: %v", err)
	}
	if name != "user_templates" {
		t.Errorf("migration 2 name = %q, want %q", name, "user_templates")
	}
}

func TestDeletingUserCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, store, "ana@example.com")

	if _, err := store.CreateHistoryEntry(ctx, &models.HistoryEntry{UserID: userID, Title: "Consulta"}); err != nil {
		t.Fatalf("CreateHistoryEntry: %v", err)
	}
	if err := store.SetPreference(ctx, userID, "tema", "escuro"); err != nil {
		t.Fatalf("SetPreference: %v", err)
	}

	if _, err := store.DB().ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	for _, table := range []string{"copy_history", "preferences"} {
		var n int
		if err := store.DB().QueryRow("SELECT COUNT(*) FROM "+table+" WHERE user_id = ?", userID).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows for deleted user, want 0", table, n)
		}
	}
}

func TestFormatTime_RoundTrip(t *testing.T) {
	in := time.Date(2025, 1, 15, 10, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	got := parseTime(formatTime(in))
	if !got.Equal(in) {
		t.Errorf("parseTime(formatTime(%v)) = %v", in, got)
	}
}

func TestNewID_Sortable(t *testing.T) {
	a := newID()
	b := newID()
	if len(a) != 26 {
		t.Errorf("len(newID()) = %d, want 26", len(a))
	}
	if a >= b {
		t.Errorf("newID() not increasing: %q >= %q", a, b)
	}
}
