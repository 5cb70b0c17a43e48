package license

const (
	// Unknown is reported when no strategy knows the license
	Unknown = "unknown"

	// UnknownError is reported in lenient mode when resolution failed
	UnknownError = "unknown-error"
)

// Result is the resolved license of one package plus its provenance
type Result struct {
	Package    string // Package name
	Raw        string // Text exactly as the strategy returned it, empty if none matched
	License    string // Normalized single-line license, never empty
	ResolvedBy string // Strategy identifier, empty when nothing matched
	Err        error  // Set only for lenient-mode error rows
}

// UnknownResult returns the sentinel result for pkg
func UnknownResult(pkg string) Result {
	return Result{Package: pkg, License: Unknown}
}

// ErrorResult returns the lenient-mode result for a package whose
// resolution failed with err
func ErrorResult(pkg string, err error) Result {
	return Result{Package: pkg, License: UnknownError, Err: err}
}

// Found reports whether a strategy supplied the license
func (r Result) Found() bool {
	return r.ResolvedBy != ""
}

// Failed reports whether this is an error row
func (r Result) Failed() bool {
	return r.Err != nil
}
