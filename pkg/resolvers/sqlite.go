package resolvers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arc-language/pkglicense/pkg/license"
)

// licenseQuery reads from a table created as
//
//	CREATE TABLE licenses (package TEXT PRIMARY KEY, license TEXT NOT NULL)
const licenseQuery = "SELECT license FROM licenses WHERE package = ?"

// SQLite looks packages up in a read-only SQLite license database.
// The database is opened on first use and shared by concurrent probes.
type SQLite struct {
	ID   string
	Path string

	once sync.Once
	db   *sql.DB
	err  error
}

// NewSQLite creates a strategy reading the database at path
func NewSQLite(path string) *SQLite {
	return &SQLite{ID: TypeSQLite, Path: path}
}

// Name returns the strategy identifier
func (s *SQLite) Name() string {
	return s.ID
}

func (s *SQLite) open() (*sql.DB, error) {
	s.once.Do(func() {
		if _, err := os.Stat(s.Path); err != nil {
			s.err = fmt.Errorf("license database: %w", err)
			return
		}

		dsn, err := sqliteURI(s.Path, "ro")
		if err != nil {
			s.err = fmt.Errorf("license database: %w", err)
			return
		}

		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			s.err = fmt.Errorf("failed to open license database: %w", err)
			return
		}
		db.SetMaxOpenConns(4)
		s.db = db
	})
	return s.db, s.err
}

// sqliteURI builds a file: URI for path with the given open mode. The path
// is escaped so '?' and '#' in directory names stay part of the file name.
func sqliteURI(path, mode string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=" + mode}
	return u.String(), nil
}

// Probe returns the license stored for pkg
func (s *SQLite) Probe(ctx context.Context, pkg string) (string, bool, error) {
	if err := license.ValidateName(pkg); err != nil {
		return "", false, err
	}

	db, err := s.open()
	if err != nil {
		return "", false, license.Failed(err)
	}

	var lic string
	err = db.QueryRowContext(ctx, licenseQuery, pkg).Scan(&lic)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, license.Failed(fmt.Errorf("querying license database: %w", err))
	}
	return lic, true, nil
}

// Close releases the database handle
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
