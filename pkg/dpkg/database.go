package dpkg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
)

// NewDatabase creates a reader for the dpkg package database
func NewDatabase(cfg *Config) *Database {
	if cfg == nil {
		cfg = &Config{}
	}

	// Set defaults
	if cfg.StatusFile == "" {
		cfg.StatusFile = DefaultStatusFile
	}
	if cfg.QueryPath == "" {
		cfg.QueryPath = "dpkg-query"
	}

	// Setup logger
	logger := cfg.Logger
	if logger == nil {
		if cfg.Debug {
			logger = log.New(os.Stderr, "[DPKG] ", log.LstdFlags)
		} else {
			logger = log.New(io.Discard, "", 0)
		}
	}

	return &Database{
		config: cfg,
		logger: logger,
	}
}

// List returns every package dpkg knows about, in file order.
// The status file is read directly; dpkg-query is only used when the
// status file does not exist.
func (db *Database) List(ctx context.Context) ([]Record, error) {
	f, err := os.Open(db.config.StatusFile)
	if err == nil {
		defer f.Close()
		db.logger.Printf("Reading status file: %s", db.config.StatusFile)

		records, err := ParseStatus(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", db.config.StatusFile, err)
		}
		db.logger.Printf("  Parsed %d packages", len(records))
		return records, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("opening status file: %w", err)
	}

	db.logger.Printf("Status file %s not found, falling back to %s", db.config.StatusFile, db.config.QueryPath)
	return db.query(ctx)
}

// Installed returns the installed-family packages sorted by name
func (db *Database) Installed(ctx context.Context) ([]Record, error) {
	records, err := db.List(ctx)
	if err != nil {
		return nil, err
	}
	installed := Installed(records)
	db.logger.Printf("  %d of %d packages are installed", len(installed), len(records))
	return installed, nil
}

func (db *Database) query(ctx context.Context) ([]Record, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, db.config.QueryPath, "-W", "-f="+QueryFormat)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return nil, fmt.Errorf("running %s: %w: %s", db.config.QueryPath, err, msg)
		}
		return nil, fmt.Errorf("running %s: %w", db.config.QueryPath, err)
	}

	records, err := ParseQuery(&stdout)
	if err != nil {
		return nil, fmt.Errorf("parsing %s output: %w", db.config.QueryPath, err)
	}
	db.logger.Printf("  Parsed %d packages", len(records))
	return records, nil
}
