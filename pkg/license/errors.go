package license

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates an empty or malformed package identifier
	ErrInvalidInput = errors.New("invalid input")

	// ErrStrategyExecution indicates a strategy could not complete its probe
	ErrStrategyExecution = errors.New("strategy execution failed")

	// ErrResolverFailed indicates the chain aborted resolution of a package
	ErrResolverFailed = errors.New("resolver failed")

	// ErrTimeout indicates a probe exceeded its deadline
	ErrTimeout = errors.New("probe timed out")
)

// Error wraps an error with the package and strategy it occurred in
type Error struct {
	Op       string // Operation that failed
	Package  string // Package name if applicable
	Strategy string // Strategy identifier if applicable
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Package != "" && e.Strategy != "":
		return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.Package, e.Strategy, e.Err)
	case e.Package != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Failed wraps err so that it matches ErrStrategyExecution.
// Strategies use it for I/O failures and missing backing resources.
func Failed(err error) error {
	if err == nil || errors.Is(err, ErrStrategyExecution) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStrategyExecution, err)
}
