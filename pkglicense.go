// Package pkglicense reports the license of every installed dpkg package.
//
// Licenses are found by an ordered chain of resolver strategies (copyright
// files, cached .deb archives, a bundled registry, SQLite databases and
// external plugins). The first strategy with an answer wins; packages no
// strategy knows are reported as "unknown".
package pkglicense

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/arc-language/pkglicense/pkg/core"
	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
	"github.com/arc-language/pkglicense/pkg/registry"
	"github.com/arc-language/pkglicense/pkg/report"
	"github.com/arc-language/pkglicense/pkg/resolvers"
	"github.com/arc-language/pkglicense/pkg/scan"
)

// Re-export types for convenience
type (
	Config         = core.Config
	ResolverConfig = core.ResolverConfig
	Record         = dpkg.Record
	Result         = license.Result
	Strategy       = license.Strategy
	StrategyFunc   = license.StrategyFunc
	Row            = scan.Row
	Stats          = scan.Stats
	Format         = report.Format
	Policy         = scan.Policy
	// RegistryEntry is one package of the bundled license registry
	RegistryEntry = registry.Entry
)

// Re-export constants
const (
	Unknown      = license.Unknown
	UnknownError = license.UnknownError

	FormatTable    = report.FormatTable
	FormatCSV      = report.FormatCSV
	FormatMarkdown = report.FormatMarkdown

	PolicyStrict  = scan.PolicyStrict
	PolicyLenient = scan.PolicyLenient
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// Licenser resolves and reports package licenses
type Licenser struct {
	config  *Config
	format  report.Format
	db      *dpkg.Database
	set     *resolvers.Set
	chain   *license.Chain
	scanner *scan.Scanner
	logger  *log.Logger
}

// New creates a Licenser with the resolver chain described by cfg.
// Extra strategies are tried before the configured ones.
func New(cfg *Config, extra ...Strategy) (*Licenser, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	format, _ := report.ParseFormat(cfg.Format)
	policy, _ := scan.ParsePolicy(cfg.Policy)

	logger := cfg.Logger
	if logger == nil {
		if cfg.Debug {
			logger = log.New(os.Stderr, "[PKGLICENSE] ", log.LstdFlags)
		} else {
			logger = log.New(io.Discard, "", 0)
		}
	}

	set, err := resolvers.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("building resolvers: %w", err)
	}

	strategies := append(append([]Strategy(nil), extra...), set.Strategies...)
	chain, err := license.NewChain(strategies,
		license.WithProbeTimeout(cfg.Timeout),
		license.WithLogger(logger),
	)
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("building resolver chain: %w", err)
	}

	return &Licenser{
		config: cfg,
		format: format,
		db: dpkg.NewDatabase(&dpkg.Config{
			StatusFile: cfg.StatusFile,
			Debug:      cfg.Debug,
			Logger:     cfg.Logger,
		}),
		set:   set,
		chain: chain,
		scanner: scan.New(chain, &scan.Config{
			Policy:  policy,
			Jobs:    cfg.Jobs,
			Timeout: cfg.PackageTimeout,
			Debug:   cfg.Debug,
			Logger:  cfg.Logger,
		}),
		logger: logger,
	}, nil
}

// Strategies returns the resolver names in priority order
func (l *Licenser) Strategies() []string {
	return l.chain.Strategies()
}

// Resolve determines the license of a single package
func (l *Licenser) Resolve(ctx context.Context, name string) (Result, error) {
	return l.chain.Resolve(ctx, name)
}

// Installed lists installed packages sorted by name
func (l *Licenser) Installed(ctx context.Context) ([]Record, error) {
	return l.db.Installed(ctx)
}

// Scan resolves records with the configured policy and worker count,
// calling emit in input order
func (l *Licenser) Scan(ctx context.Context, records []Record, emit func(Row) error) (Stats, error) {
	return l.scanner.Run(ctx, records, emit)
}

// Report enumerates installed packages and writes the license report to
// out in the configured format
func (l *Licenser) Report(ctx context.Context, out io.Writer) (Stats, error) {
	records, err := l.Installed(ctx)
	if err != nil {
		return Stats{}, &license.Error{Op: "list", Err: err}
	}
	return l.WriteReport(ctx, out, records)
}

// WriteReport resolves records and writes the report to out
func (l *Licenser) WriteReport(ctx context.Context, out io.Writer, records []Record) (Stats, error) {
	w := report.NewWriter(out, l.format)

	stats, err := l.Scan(ctx, records, func(r Row) error {
		return w.Write(r.Record, r.Result)
	})
	if err != nil {
		return stats, err
	}

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("writing report: %w", err)
	}
	return stats, nil
}

// Close releases resolver resources
func (l *Licenser) Close() error {
	return l.set.Close()
}
