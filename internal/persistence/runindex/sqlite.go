// Package runindex keeps a small sqlite ledger of miner runs: when they ran,
// what they produced, and which backups they took. Backup retention pruning
// and "what changed last run" questions are answered from here.
package runindex

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Index struct {
	db *sql.DB
}

func Open(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The pipeline is single-threaded; one connection is all it gets.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func (x *Index) Close() error { return x.db.Close() }

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			expansions TEXT NOT NULL,
			categories TEXT NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			new INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			kind TEXT NOT NULL,
			path TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS backups (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			target TEXT NOT NULL,
			path TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backups_target ON backups(target, created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun records a run start and returns its id.
func (x *Index) BeginRun(startedAt time.Time, expansions, categories []string) (int64, error) {
	res, err := x.db.Exec(
		`INSERT INTO runs (started_at, expansions, categories) VALUES (?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339),
		strings.Join(expansions, ","),
		strings.Join(categories, ","),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun closes out a run with its totals.
func (x *Index) FinishRun(runID int64, finishedAt time.Time, total, newCount int) error {
	_, err := x.db.Exec(
		`UPDATE runs SET finished_at=?, total=?, new=? WHERE id=?`,
		finishedAt.UTC().Format(time.RFC3339), total, newCount, runID,
	)
	return err
}

// RecordArtifact notes a file the run produced (table file, cache, merged
// document).
func (x *Index) RecordArtifact(runID int64, kind, path string) error {
	_, err := x.db.Exec(`INSERT INTO artifacts (run_id, kind, path) VALUES (?, ?, ?)`, runID, kind, path)
	return err
}

// RecordBackup notes a backup taken before overwriting target.
func (x *Index) RecordBackup(runID int64, target, backupPath string) error {
	_, err := x.db.Exec(
		`INSERT INTO backups (run_id, target, path, created_at) VALUES (?, ?, ?, ?)`,
		runID, target, backupPath, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Backups returns the recorded backups of target, newest first.
func (x *Index) Backups(target string) ([]string, error) {
	rows, err := x.db.Query(`SELECT path FROM backups WHERE target=? ORDER BY created_at DESC, path DESC`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ForgetBackups drops ledger rows for backups that were pruned from disk.
func (x *Index) ForgetBackups(paths []string) error {
	for _, p := range paths {
		if _, err := x.db.Exec(`DELETE FROM backups WHERE path=?`, p); err != nil {
			return err
		}
	}
	return nil
}

// LastRun returns the most recent finished run's totals, if any.
func (x *Index) LastRun() (started string, total, newCount int, ok bool, err error) {
	row := x.db.QueryRow(`SELECT started_at, total, new FROM runs WHERE finished_at IS NOT NULL ORDER BY id DESC LIMIT 1`)
	switch err = row.Scan(&started, &total, &newCount); err {
	case nil:
		return started, total, newCount, true, nil
	case sql.ErrNoRows:
		return "", 0, 0, false, nil
	default:
		return "", 0, 0, false, err
	}
}
