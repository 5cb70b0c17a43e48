package pkglicense

import (
	"github.com/arc-language/pkglicense/pkg/license"
)

var (
	// ErrInvalidInput indicates an empty or malformed package name
	ErrInvalidInput = license.ErrInvalidInput

	// ErrStrategyExecution indicates a strategy could not complete its probe
	ErrStrategyExecution = license.ErrStrategyExecution

	// ErrResolverFailed indicates the chain aborted a package on a strategy error
	ErrResolverFailed = license.ErrResolverFailed

	// ErrTimeout indicates a probe or package ran out of time
	ErrTimeout = license.ErrTimeout
)

// Error wraps an error with the operation, package and strategy involved
type Error = license.Error
