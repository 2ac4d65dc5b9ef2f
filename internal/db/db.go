package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jobworkflow/internal/toolerr"
)

// TimeLayout is the canonical timestamp format stored in the database:
// ISO-8601 UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in the canonical database timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Now returns the current instant in the canonical format.
func Now() string {
	return FormatTime(time.Now())
}

// Store wraps two connection pools over one SQLite file. The writer is
// capped at a single connection so every transaction serializes; readers
// run read-only and never block behind the writer in WAL mode.
type Store struct {
	Reader *sql.DB
	Writer *sql.DB

	path string
}

// Open opens the database at path, creating the file and schema when
// absent. This is the bootstrap entry point used by ingestion and init.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, toolerr.DB("create database directory: %v", err)
		}
	}

	store, err := openPools(path)
	if err != nil {
		return nil, err
	}
	if err := store.createSchema(); err != nil {
		store.Close()
		return nil, toolerr.DB("bootstrap schema: %v", err)
	}
	return store, nil
}

// OpenExisting opens the database at path without bootstrapping. A
// missing file is a DB_NOT_FOUND error; only ingestion creates the file.
func OpenExisting(path string) (*Store, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, toolerr.DBNotFound("database not found at %s; run scrape_jobs first", path)
	}
	if err != nil {
		return nil, toolerr.DB("stat database: %v", err)
	}
	if info.IsDir() {
		return nil, toolerr.DBNotFound("database path %s is a directory", path)
	}
	return openPools(path)
}

func openPools(path string) (*Store, error) {
	writer, err := sql.Open("sqlite3", dsn(path, false))
	if err != nil {
		return nil, toolerr.DB("open database writer: %v", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite3", dsn(path, true))
	if err != nil {
		_ = writer.Close()
		return nil, toolerr.DB("open database reader: %v", err)
	}

	return &Store{Reader: reader, Writer: writer, path: path}, nil
}

func dsn(path string, readOnly bool) string {
	s := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	if readOnly {
		s += "&mode=ro"
	}
	return s
}

// Path returns the filesystem location of the database.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	rerr := s.Reader.Close()
	werr := s.Writer.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
