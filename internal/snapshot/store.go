// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot persists the last refreshed REST catalog in a local
// SQLite database so searches run without a network round trip.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bactfetch/pkg/types"
)

// DefaultPath is where the CLI keeps the snapshot unless configured.
const DefaultPath = "bactfetch-catalog.db"

const refreshedKey = "refreshed_at"

// Store manages the catalog snapshot database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the snapshot database at path and its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// OpenExisting opens the snapshot at path, returning types.ErrNoSnapshot
// when no refresh has been stored there yet.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", types.ErrNoSnapshot, path)
		}
		return nil, fmt.Errorf("checking snapshot: %w", err)
	}
	return Open(path)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS genomes (
			position INTEGER PRIMARY KEY,
			accession TEXT,
			assembly TEXT,
			common_name TEXT,
			display_name TEXT,
			division TEXT,
			name TEXT NOT NULL,
			release INTEGER,
			taxon_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_genomes_name ON genomes(name)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored catalog with records, keeping their order, and
// stamps the refresh time.
func (s *Store) Save(ctx context.Context, records []types.GenomeRecord, refreshed time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM genomes`); err != nil {
		return fmt.Errorf("clearing genomes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO genomes (position, accession, assembly, common_name, display_name, division, name, release, taxon_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var common sql.NullString
		if r.CommonName != nil {
			common = sql.NullString{String: *r.CommonName, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			i, r.Accession, r.Assembly, common, r.DisplayName,
			r.Division, r.Name, r.Release, r.TaxonID,
		)
		if err != nil {
			return fmt.Errorf("inserting genome %s: %w", r.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		refreshedKey, refreshed.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("stamping refresh time: %w", err)
	}

	return tx.Commit()
}

// RefreshedAt returns when the snapshot was last saved, or
// types.ErrNoSnapshot if it never was.
func (s *Store) RefreshedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, refreshedKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w at %s", types.ErrNoSnapshot, s.path)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading refresh time: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing refresh time %q: %w", value, err)
	}
	return t, nil
}

// Load returns the stored records in catalog order.
func (s *Store) Load(ctx context.Context) ([]types.GenomeRecord, error) {
	if _, err := s.RefreshedAt(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT accession, assembly, common_name, display_name, division, name, release, taxon_id
		 FROM genomes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying genomes: %w", err)
	}
	defer rows.Close()

	var records []types.GenomeRecord
	for rows.Next() {
		var r types.GenomeRecord
		var common sql.NullString
		if err := rows.Scan(&r.Accession, &r.Assembly, &common, &r.DisplayName,
			&r.Division, &r.Name, &r.Release, &r.TaxonID); err != nil {
			return nil, fmt.Errorf("scanning genome: %w", err)
		}
		if common.Valid {
			name := common.String
			r.CommonName = &name
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
