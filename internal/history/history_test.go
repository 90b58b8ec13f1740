package history

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestDatabaseInitialization(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "history.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	version, err := db.GetVersion()
	if err != nil {
		t.Fatalf("Failed to get version: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	// Re-running migrations must be a no-op.
	if err := db.RunMigrations(); err != nil {
		t.Errorf("Re-running migrations failed: %v", err)
	}
}

func TestRecordEncounterRequiresSession(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordEncounter([]string{"pidgey"}); err == nil {
		t.Error("Expected error when recording without a session")
	}
}

func TestRecordAndCountEncounters(t *testing.T) {
	db := openTestDB(t)

	id, err := db.BeginSession()
	if err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}
	if id == "" {
		t.Fatal("BeginSession returned empty id")
	}

	if err := db.RecordEncounter([]string{"pidgey"}); err != nil {
		t.Fatalf("RecordEncounter failed: %v", err)
	}
	if err := db.RecordEncounter([]string{"zubat", "zubat"}); err != nil {
		t.Fatalf("RecordEncounter failed: %v", err)
	}

	n, err := db.EncounterCount()
	if err != nil {
		t.Fatalf("EncounterCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("EncounterCount = %d, want 2", n)
	}
}

func TestTopSpecies(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.BeginSession(); err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}

	encounters := [][]string{
		{"pidgey"},
		{"pidgey"},
		{"zubat", "zubat"},
		{"rattata"},
		{"zubat"},
	}
	for _, sp := range encounters {
		if err := db.RecordEncounter(sp); err != nil {
			t.Fatalf("RecordEncounter failed: %v", err)
		}
	}

	top, err := db.TopSpecies(2)
	if err != nil {
		t.Fatalf("TopSpecies failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(top))
	}
	if top[0].Species != "zubat" || top[0].Count != 3 {
		t.Errorf("top[0] = %+v, want zubat/3", top[0])
	}
	if top[1].Species != "pidgey" || top[1].Count != 2 {
		t.Errorf("top[1] = %+v, want pidgey/2", top[1])
	}
}

func TestTopSpeciesBreaksTiesByName(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.BeginSession(); err != nil {
		t.Fatalf("BeginSession failed: %v", err)
	}

	for _, sp := range []string{"zubat", "abra", "pidgey", "abra", "pidgey", "zubat"} {
		if err := db.RecordEncounter([]string{sp}); err != nil {
			t.Fatalf("RecordEncounter failed: %v", err)
		}
	}

	top, err := db.TopSpecies(0)
	if err != nil {
		t.Fatalf("TopSpecies failed: %v", err)
	}
	want := []SpeciesCount{{"abra", 2}, {"pidgey", 2}, {"zubat", 2}}
	if len(top) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(top))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}
}
