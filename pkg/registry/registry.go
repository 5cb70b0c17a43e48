package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNotSynced means the registry directory does not exist yet
	ErrNotSynced = errors.New("registry: licenses not found, run sync first")

	// ErrNotFound means the registry has no entry for the package
	ErrNotFound = errors.New("registry: package not found")
)

// Entry represents a single <name>/index.toml file
type Entry struct {
	Name    string   `toml:"name"`
	License string   `toml:"license"`
	Aliases []string `toml:"aliases"` // Other binary packages built from the same source
	Source  string   `toml:"source"`  // Where the license information was taken from
}

// Registry provides lookup into a directory of license entries
type Registry struct {
	dir string

	aliasOnce sync.Once
	aliases   map[string]string // alias -> entry directory name
	aliasErr  error
}

// New creates a Registry rooted at dir
func New(dir string) *Registry {
	return &Registry{dir: dir}
}

// Available reports whether the registry directory exists
func (r *Registry) Available() bool {
	info, err := os.Stat(r.dir)
	return err == nil && info.IsDir()
}

// License returns the license recorded for a package, looking at aliases
// when there is no entry of that name. An entry without a license field is
// treated like a missing entry.
func (r *Registry) License(name string) (string, error) {
	entry, err := r.Load(name)
	if errors.Is(err, ErrNotFound) {
		target, ok, aliasErr := r.alias(name)
		if aliasErr != nil {
			return "", aliasErr
		}
		if ok {
			entry, err = r.Load(target)
		}
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(entry.License) == "" {
		return "", fmt.Errorf("%w: '%s' has no license field", ErrNotFound, name)
	}
	return entry.License, nil
}

// Load reads and parses <dir>/<name>/index.toml
func (r *Registry) Load(name string) (*Entry, error) {
	if _, err := os.Stat(r.dir); os.IsNotExist(err) {
		return nil, ErrNotSynced
	}

	path := filepath.Join(r.dir, name, "index.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Check if the directory exists, to give a better error message.
			if _, statErr := os.Stat(filepath.Dir(path)); statErr == nil {
				return nil, fmt.Errorf("%w: found package '%s' directory, but missing index.toml", ErrNotFound, name)
			}
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
		}
		return nil, fmt.Errorf("registry: reading '%s': %w", name, err)
	}

	var entry Entry
	if _, err := toml.Decode(string(data), &entry); err != nil {
		return nil, fmt.Errorf("registry: failed to parse '%s': %w", name, err)
	}

	return &entry, nil
}

// alias returns the entry that lists name among its aliases. The alias
// table is built once, on first use.
func (r *Registry) alias(name string) (string, bool, error) {
	r.aliasOnce.Do(func() {
		r.aliases, r.aliasErr = r.scanAliases()
	})
	if r.aliasErr != nil {
		return "", false, r.aliasErr
	}
	target, ok := r.aliases[name]
	return target, ok, nil
}

func (r *Registry) scanAliases() (map[string]string, error) {
	dirs, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("registry: listing entries: %w", err)
	}

	aliases := make(map[string]string)
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		entry, err := r.Load(d.Name())
		if err != nil {
			// Broken or incomplete entries are reported when looked up directly
			continue
		}
		for _, a := range entry.Aliases {
			if _, taken := aliases[a]; !taken {
				aliases[a] = d.Name()
			}
		}
	}
	return aliases, nil
}
