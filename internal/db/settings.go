package db

import (
	"database/sql"
	"time"
)

// Get returns the value stored under key, or nil if the key is absent
func (db *DB) Get(key string) ([]byte, error) {
	var value []byte
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (db *DB) Set(key string, value []byte) error {
	now := time.Now()
	_, err := db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	return err
}

// UpdatedAt returns when key was last written. The zero time means absent.
func (db *DB) UpdatedAt(key string) (time.Time, error) {
	var t time.Time
	err := db.QueryRow(`SELECT updated_at FROM settings WHERE key = ?`, key).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return t, err
}
