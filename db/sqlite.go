// Package db is the durable client-side storage: a small SQLite file
// holding the persisted session tokens and a handful of UI settings. The
// tokens are the only state that must survive a restart; everything else
// the client shows is re-fetched from the API.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed storage keys for the persisted session tokens.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and runs migrations.
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs database migrations.
func (db *DB) migrate() error {
	migrations := []string{
		// Session tokens, one row per fixed key
		`CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Frontend settings (last selected project, etc.)
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// SaveTokens upserts both session tokens in one transaction so a crash
// can never leave one token without the other.
func (db *DB) SaveTokens(access, refresh string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := tx.Exec(upsert, keyAccessToken, access); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if _, err := tx.Exec(upsert, keyRefreshToken, refresh); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tokens: %w", err)
	}
	return nil
}

// LoadTokens reads the persisted token pair. Missing rows come back as
// empty strings, not errors.
func (db *DB) LoadTokens() (access, refresh string, err error) {
	access, err = db.sessionValue(keyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, err = db.sessionValue(keyRefreshToken)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ClearTokens removes the persisted token pair. Idempotent.
func (db *DB) ClearTokens() error {
	_, err := db.conn.Exec(`DELETE FROM session WHERE key IN (?, ?)`, keyAccessToken, keyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

func (db *DB) sessionValue(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a frontend setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// GetSetting reads a frontend setting, returning the empty string when it
// has never been set.
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}
