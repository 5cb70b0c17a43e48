// Package license resolves the license of an installed package by querying
// an ordered chain of independent strategies.
//
// Each Strategy answers one question: "does this source know the license of
// package X?". A Chain asks its strategies in order and the first usable
// answer wins. Absence of license metadata is a normal outcome and is reported
// as Unknown, not as an error.
package license

import (
	"context"
	"fmt"
	"strings"
)

// Strategy is a single license detection technique.
//
// Probe reports found=false when the source has nothing to say about the
// package. A non-nil error is reserved for execution failures such as an
// unreadable backing file or a missing database, and should wrap
// ErrStrategyExecution. Implementations must be read-only and safe for
// concurrent use across packages.
type Strategy interface {
	// Name returns the strategy identifier (e.g., "dep5", "registry")
	Name() string

	// Probe looks up the license text for the named package
	Probe(ctx context.Context, pkg string) (text string, found bool, err error)
}

// StrategyFunc adapts a function into a named Strategy.
type StrategyFunc struct {
	ID string
	Fn func(ctx context.Context, pkg string) (string, bool, error)
}

// Name returns the strategy identifier
func (s StrategyFunc) Name() string {
	return s.ID
}

// Probe calls the wrapped function
func (s StrategyFunc) Probe(ctx context.Context, pkg string) (string, bool, error) {
	if err := ValidateName(pkg); err != nil {
		return "", false, err
	}
	return s.Fn(ctx, pkg)
}

// ValidateName checks that pkg is a usable package identifier.
// Debian package names never contain whitespace, path separators or NUL.
func ValidateName(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("%w: empty package name", ErrInvalidInput)
	}
	if strings.ContainsAny(pkg, " \t\r\n/\x00") {
		return fmt.Errorf("%w: malformed package name %q", ErrInvalidInput, pkg)
	}
	if strings.HasPrefix(pkg, "-") || pkg == "." || pkg == ".." {
		return fmt.Errorf("%w: malformed package name %q", ErrInvalidInput, pkg)
	}
	return nil
}
