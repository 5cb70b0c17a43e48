package dpkg

import (
	"log"
	"strings"
	"unicode"
)

// Config configures access to the dpkg database
type Config struct {
	StatusFile string      // Default: /var/lib/dpkg/status
	QueryPath  string      // dpkg-query binary used when StatusFile is absent
	Debug      bool        // Enable debug logging
	Logger     *log.Logger // Custom logger (optional)
}

// Database reads the list of packages known to dpkg
type Database struct {
	config *Config
	logger *log.Logger
}

// Record is one package as listed by dpkg -l
type Record struct {
	Status      string // Two-letter status code, e.g. "ii"
	Name        string
	Version     string
	Arch        string
	Description string // Synopsis line only
}

// State returns the package state flag
func (r Record) State() byte {
	if len(r.Status) < 2 {
		return 0
	}
	return r.Status[1]
}

// IsInstalled reports whether the package is in the installed family of
// states (installed, unpacked, half-configured, half-installed,
// triggers-awaited or triggers-pending)
func (r Record) IsInstalled() bool {
	state := r.State()
	if state == 0 {
		return false
	}
	return strings.ContainsRune(installedFamily, unicode.ToLower(rune(state)))
}
