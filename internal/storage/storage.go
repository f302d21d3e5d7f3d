// Package storage persists scan results in SQLite so list/clean/explain
// can run without rescanning.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"filedupfinder/internal/models"
)

// Storage handles persistence of file fingerprints and duplicate groups
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage creates a new Storage
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Current schema version
const schemaVersion = 1

// migrations defines all schema migrations beyond the base schema.
// Each migration should be idempotent (safe to run multiple times).
var migrations = []struct {
	version     int
	description string
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
		up:          "", // Handled by base schema creation
	},
}

// init creates the database schema
func (s *Storage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		content_hash TEXT DEFAULT '',
		file_size INTEGER NOT NULL,
		mod_time DATETIME NOT NULL,
		is_image INTEGER DEFAULT 0,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		format TEXT DEFAULT '',
		has_exif INTEGER DEFAULT 0,
		score REAL NOT NULL,
		group_key TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_content_hash ON files(content_hash);
	CREATE INDEX IF NOT EXISTS idx_files_group_key ON files(group_key);
	CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_files INTEGER NOT NULL,
		total_groups INTEGER NOT NULL,
		total_duplicates INTEGER NOT NULL
	);
	`

	if _, err = s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := s.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations
func (s *Storage) migrate() error {
	currentVersion := s.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if m.up != "" {
			if _, err := s.db.Exec(m.up); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
			}
		}
		s.setSchemaVersion(m.version)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Storage) getSchemaVersion() int {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

// setSchemaVersion records a migration as applied
func (s *Storage) setSchemaVersion(version int) {
	s.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveFiles saves or updates multiple files
func (s *Storage) SaveFiles(files []*models.FileInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO files (path, content_hash, file_size, mod_time, is_image, width, height, format, has_exif, score, group_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		_, err := stmt.Exec(
			f.Path,
			f.ContentHash,
			f.FileSize,
			f.ModTime.UTC().Format("2006-01-02 15:04:05"),
			boolToInt(f.IsImage),
			f.Width,
			f.Height,
			f.Format,
			boolToInt(f.HasExif),
			f.Score,
			f.GroupKey,
		)
		if err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

const fileColumns = `id, path, content_hash, file_size, mod_time, is_image, width, height, format, has_exif, score, group_key`

// GetAllFiles returns all stored files ordered by path
func (s *Storage) GetAllFiles() ([]*models.FileInfo, error) {
	rows, err := s.db.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

func scanFiles(rows *sql.Rows) ([]*models.FileInfo, error) {
	var files []*models.FileInfo
	for rows.Next() {
		f := &models.FileInfo{}
		var modTime string
		var isImageInt, hasExifInt int
		var contentHash, groupKey sql.NullString
		err := rows.Scan(
			&f.ID,
			&f.Path,
			&contentHash,
			&f.FileSize,
			&modTime,
			&isImageInt,
			&f.Width,
			&f.Height,
			&f.Format,
			&hasExifInt,
			&f.Score,
			&groupKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		f.ContentHash = contentHash.String
		f.GroupKey = groupKey.String
		f.IsImage = isImageInt == 1
		f.HasExif = hasExifInt == 1
		f.ModTime, _ = time.Parse("2006-01-02 15:04:05", modTime)
		files = append(files, f)
	}

	return files, rows.Err()
}

// UpdateGroups updates group keys for files
func (s *Storage) UpdateGroups(groups []*models.DuplicateGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Reset all group keys
	if _, err = tx.Exec(`UPDATE files SET group_key = ''`); err != nil {
		return fmt.Errorf("failed to reset groups: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE files SET group_key = ? WHERE path = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, group := range groups {
		for _, f := range group.Files {
			if _, err := stmt.Exec(group.Key, f.Path); err != nil {
				return fmt.Errorf("failed to update group for %s: %w", f.Path, err)
			}
		}
	}

	return tx.Commit()
}

// GetFilesByGroupKey returns files in a specific group, best quality first
func (s *Storage) GetFilesByGroupKey(key string) ([]*models.FileInfo, error) {
	rows, err := s.db.Query(`SELECT `+fileColumns+` FROM files WHERE group_key = ? ORDER BY score DESC, file_size DESC, path`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	return scanFiles(rows)
}

// GetFileByPath returns a stored file by path, or nil if not stored.
func (s *Storage) GetFileByPath(path string) (*models.FileInfo, error) {
	rows, err := s.db.Query(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

// DeleteFile removes a file from the database
func (s *Storage) DeleteFile(path string) error {
	_, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	return err
}

// RecordScan records a scan in history
func (s *Storage) RecordScan(folder string, totalFiles, totalGroups, totalDuplicates int) error {
	_, err := s.db.Exec(`
		INSERT INTO scan_history (folder, total_files, total_groups, total_duplicates)
		VALUES (?, ?, ?, ?)
	`, folder, totalFiles, totalGroups, totalDuplicates)
	return err
}

// GetGroupCount returns the number of duplicate groups
func (s *Storage) GetGroupCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT group_key) FROM files WHERE group_key != ''`).Scan(&count)
	return count, err
}

// GetDuplicateGroups returns all duplicate groups with their files
func (s *Storage) GetDuplicateGroups() ([]*models.DuplicateGroup, error) {
	rows, err := s.db.Query(`SELECT DISTINCT group_key FROM files WHERE group_key != '' ORDER BY group_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []*models.DuplicateGroup
	for _, key := range keys {
		files, err := s.GetFilesByGroupKey(key)
		if err != nil {
			return nil, err
		}

		if len(files) < 2 {
			continue
		}

		group := &models.DuplicateGroup{
			Key:    key,
			Files:  files,
			Keep:   files[0], // Already sorted best quality first
			Remove: files[1:],
		}
		groups = append(groups, group)
	}

	return groups, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
