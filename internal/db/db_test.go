package db

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	db := openTestDB(t)

	value, err := db.Get("missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != nil {
		t.Errorf("Expected nil value, got %q", value)
	}
}

func TestSetOverwritesPreviousValue(t *testing.T) {
	db := openTestDB(t)

	if err := db.Set("k", []byte("first")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := db.Set("k", []byte("second")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := db.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(value, []byte("second")) {
		t.Errorf("Expected %q, got %q", "second", value)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected a single row, got %d", count)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Set("k", []byte("kept")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	// Migrations must be idempotent on an existing file
	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	value, err := db.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != "kept" {
		t.Errorf("Expected %q, got %q", "kept", value)
	}
}

func TestUpdatedAt(t *testing.T) {
	db := openTestDB(t)

	at, err := db.UpdatedAt("k")
	if err != nil {
		t.Fatalf("UpdatedAt failed: %v", err)
	}
	if !at.IsZero() {
		t.Errorf("Expected zero time for absent key, got %v", at)
	}

	before := time.Now().Add(-time.Second)
	if err := db.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	at, err = db.UpdatedAt("k")
	if err != nil {
		t.Fatalf("UpdatedAt failed: %v", err)
	}
	if at.Before(before) {
		t.Errorf("Expected updated_at after %v, got %v", before, at)
	}
}
