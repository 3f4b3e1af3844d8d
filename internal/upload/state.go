package upload

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is the last successful upload of one program file.
type Record struct {
	Path       string
	Size       int64
	Hash       string
	ProgramID  string
	Status     string
	UploadedAt time.Time
}

// Matches reports whether the file on disk is unchanged since the upload.
func (r *Record) Matches(size int64, hash string) bool {
	return r != nil && r.Size == size && r.Hash == hash
}

// StateDB remembers uploaded program files in a local SQLite database so an
// unchanged file is never posted twice.
type StateDB struct {
	db *sql.DB
}

const stateSchema = `CREATE TABLE IF NOT EXISTS uploaded_programs (
	path        TEXT PRIMARY KEY,
	size        INTEGER NOT NULL,
	hash        TEXT NOT NULL,
	program_id  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	uploaded_at INTEGER NOT NULL
)`

// OpenStateDB opens (or creates) dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(stateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}
	return &StateDB{db: db}, nil
}

// Lookup returns the record for relPath, or nil if it was never uploaded.
func (s *StateDB) Lookup(ctx context.Context, relPath string) (*Record, error) {
	r := Record{Path: relPath}
	var at int64
	err := s.db.QueryRowContext(ctx,
		`SELECT size, hash, program_id, status, uploaded_at FROM uploaded_programs WHERE path = ?`,
		relPath,
	).Scan(&r.Size, &r.Hash, &r.ProgramID, &r.Status, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", relPath, err)
	}
	r.UploadedAt = time.UnixMilli(at).UTC()
	return &r, nil
}

// MarkUploaded stores r, replacing any earlier record for the same path.
// A zero UploadedAt is set to now.
func (s *StateDB) MarkUploaded(ctx context.Context, r Record) error {
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO uploaded_programs (path, size, hash, program_id, status, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Path, r.Size, r.Hash, r.ProgramID, r.Status, r.UploadedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", r.Path, err)
	}
	return nil
}

// WithStatus lists records whose import ended with the given status, oldest first.
func (s *StateDB) WithStatus(ctx context.Context, status string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, size, hash, program_id, status, uploaded_at FROM uploaded_programs
		 WHERE status = ? ORDER BY uploaded_at, path`, status)
	if err != nil {
		return nil, fmt.Errorf("listing %s uploads: %w", status, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var at int64
		if err := rows.Scan(&r.Path, &r.Size, &r.Hash, &r.ProgramID, &r.Status, &at); err != nil {
			return nil, err
		}
		r.UploadedAt = time.UnixMilli(at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
