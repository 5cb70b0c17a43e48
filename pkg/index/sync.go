// Package index keeps the local copy of the license registry in sync with
// its git repository.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// LicensesDir is the directory of the repository holding the registry
const LicensesDir = "licenses"

// ErrNoLicenses means the cloned repository has no licenses directory
var ErrNoLicenses = errors.New("repository has no " + LicensesDir + " directory")

// Options configures a sync
type Options struct {
	URL      string      // Repository to clone
	Branch   string      // Branch to check out
	Dir      string      // Registry directory to (re)populate
	Progress io.Writer   // Clone progress output (optional)
	Logger   *log.Logger // Custom logger (optional)
}

// Result describes a completed sync
type Result struct {
	Commit  string // Hash of the synced commit
	Entries int    // Package entries installed
}

// Sync shallow-clones the registry repository and replaces Dir with its
// licenses directory. Dir is left untouched when anything fails.
func Sync(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Dir == "" {
		return nil, errors.New("registry directory not set")
	}

	tempDir, err := os.MkdirTemp("", "pkglicense-clone-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.Printf("Cloning %s (%s)", opts.URL, opts.Branch)

	repo, err := git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:           opts.URL,
		ReferenceName: plumbing.NewBranchReferenceName(opts.Branch),
		SingleBranch:  true,
		Depth:         1,
		Progress:      opts.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("git clone failed: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}

	entries, err := Install(filepath.Join(tempDir, LicensesDir), opts.Dir)
	if err != nil {
		return nil, err
	}

	logger.Printf("Installed %d entries from %s", entries, head.Hash())
	return &Result{Commit: head.Hash().String(), Entries: entries}, nil
}

// Install copies the registry tree src into dst, replacing what was there,
// and returns the number of package entries (directories with an
// index.toml).
func Install(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return 0, ErrNoLicenses
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("creating registry parent: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return 0, fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := copyDir(src, staging); err != nil {
		return 0, fmt.Errorf("copying registry: %w", err)
	}

	if err := os.RemoveAll(dst); err != nil {
		return 0, fmt.Errorf("removing old registry: %w", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		return 0, fmt.Errorf("installing registry: %w", err)
	}

	return countEntries(dst)
}

func countEntries(dir string) (int, error) {
	dirs, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, d.Name(), "index.toml")); err == nil {
			n++
		}
	}
	return n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
