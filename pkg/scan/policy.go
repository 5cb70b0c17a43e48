package scan

import (
	"fmt"
	"strings"
)

// Policy decides what a strategy execution error does to the batch
type Policy int

const (
	// PolicyStrict aborts the report at the first failing package
	PolicyStrict Policy = iota

	// PolicyLenient reports the failing package as unknown-error and continues
	PolicyLenient
)

// String returns the configuration name of the policy
func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyLenient:
		return "lenient"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration value into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "abort":
		return PolicyStrict, nil
	case "lenient", "skip":
		return PolicyLenient, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want strict or lenient)", s)
	}
}
