// Package history keeps a durable per-encounter log in SQLite. The
// JSON state file only holds aggregates; this answers "what did I run
// into, and when" across sessions.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite history database.
type DB struct {
	conn      *sql.DB
	path      string
	sessionID string
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite works best with a single connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// BeginSession records a new tracking session and makes it current.
func (db *DB) BeginSession() (string, error) {
	id := uuid.New().String()
	_, err := db.conn.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	db.sessionID = id
	return id, nil
}

// RecordEncounter appends one completed encounter to the current
// session. Species order is preserved, duplicates included.
func (db *DB) RecordEncounter(species []string) error {
	if db.sessionID == "" {
		return fmt.Errorf("no active session")
	}
	_, err := db.conn.Exec(
		`INSERT INTO encounters (session_id, species, creature_count, observed_at)
		 VALUES (?, ?, ?, ?)`,
		db.sessionID, strings.Join(species, ","), len(species), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record encounter: %w", err)
	}
	return nil
}

// EncounterCount returns the number of logged encounters across all
// sessions.
func (db *DB) EncounterCount() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM encounters`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count encounters: %w", err)
	}
	return n, nil
}

// SpeciesCount is one row of the all-time species ranking.
type SpeciesCount struct {
	Species string
	Count   int
}

// TopSpecies returns the most-encountered species across all sessions,
// counting each creature in a multi-battle individually.
func (db *DB) TopSpecies(limit int) ([]SpeciesCount, error) {
	rows, err := db.conn.Query(
		`SELECT species, creature_count FROM encounters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query encounters: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var joined string
		var count int
		if err := rows.Scan(&joined, &count); err != nil {
			return nil, fmt.Errorf("failed to scan encounter row: %w", err)
		}
		for _, sp := range strings.Split(joined, ",") {
			if sp != "" {
				totals[sp]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate encounters: %w", err)
	}

	out := make([]SpeciesCount, 0, len(totals))
	for sp, n := range totals {
		out = append(out, SpeciesCount{Species: sp, Count: n})
	}
	// Stable order: count desc, then name for ties.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Species < out[j].Species
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
