package sqliteutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckHealthyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`create table samples(ts integer)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	db.Close()

	if err := Check(path, 2*time.Second); err != nil {
		t.Fatalf("Check failed on healthy db: %v", err)
	}
}

func TestCheckTruncatedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`create table samples(ts integer)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 500; i++ {
		if _, err := db.Exec(`insert into samples values(?)`, i); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	db.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()/2); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	if err := Check(path, 2*time.Second); err == nil {
		t.Fatalf("expected Check to fail on truncated db")
	}
}

func TestCheckEmptyPath(t *testing.T) {
	if err := Check("", time.Second); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
