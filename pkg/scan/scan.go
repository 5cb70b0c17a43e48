// Package scan drives license resolution over a list of installed packages.
//
// Packages are resolved concurrently but rows are handed to the caller in
// input order, as soon as every earlier package is done.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// Resolver resolves the license of one package; *license.Chain implements it
type Resolver interface {
	Resolve(ctx context.Context, pkg string) (license.Result, error)
}

// Config configures a Scanner
type Config struct {
	Policy  Policy
	Jobs    int           // Concurrent resolutions (default: 1)
	Timeout time.Duration // Per-package budget across the whole chain (0: none)
	Debug   bool          // Enable debug logging
	Logger  *log.Logger   // Custom logger (optional)
}

// Row is one resolved package, in input position Index
type Row struct {
	Index  int
	Record dpkg.Record
	Result license.Result
}

// Stats summarises a run
type Stats struct {
	Total      int
	Resolved   int
	Unknown    int
	Failed     int
	ByStrategy map[string]int
	Elapsed    time.Duration
}

func (s *Stats) add(res license.Result) {
	s.Total++
	switch {
	case res.Failed():
		s.Failed++
	case res.Found():
		s.Resolved++
		s.ByStrategy[res.ResolvedBy]++
	default:
		s.Unknown++
	}
}

// Scanner resolves package lists with a bounded worker pool
type Scanner struct {
	resolver Resolver
	policy   Policy
	jobs     int
	timeout  time.Duration
	logger   *log.Logger
}

// New creates a Scanner around resolver
func New(resolver Resolver, cfg *Config) *Scanner {
	if cfg == nil {
		cfg = &Config{}
	}

	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}

	// Setup logger
	logger := cfg.Logger
	if logger == nil {
		if cfg.Debug {
			logger = log.New(os.Stderr, "[SCAN] ", log.LstdFlags)
		} else {
			logger = log.New(io.Discard, "", 0)
		}
	}

	return &Scanner{
		resolver: resolver,
		policy:   cfg.Policy,
		jobs:     jobs,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Run resolves every record and calls emit once per record, in input order.
//
// Under PolicyStrict the first failing package (lowest index) ends the run:
// rows before it are emitted, no row at or after it is, packages after it
// still in flight are cancelled, and its error is returned. Under PolicyLenient a failing package is emitted with the
// license.UnknownError result and the run continues. An emit error or a
// cancelled context stops the run in either mode.
func (s *Scanner) Run(ctx context.Context, records []dpkg.Record, emit func(Row) error) (Stats, error) {
	start := time.Now()
	stats := Stats{ByStrategy: make(map[string]int)}
	n := len(records)

	s.logger.Printf("Resolving %d packages (jobs=%d, policy=%s)", n, s.jobs, s.policy)

	var (
		mu      sync.Mutex
		results = make([]license.Result, n)
		errs    = make([]error, n)
		done    = make([]bool, n)
		next    = 0 // first index not yet emitted
		failAt  = n // lowest failing index under PolicyStrict
		cancels = make([]context.CancelFunc, n)
	)

	// flush emits the completed prefix; callers hold mu
	flush := func() error {
		for next < n && done[next] {
			if errs[next] != nil {
				return nil
			}
			row := Row{Index: next, Record: records[next], Result: results[next]}
			if err := emit(row); err != nil {
				next = n
				return fmt.Errorf("emitting %s: %w", row.Record.Name, err)
			}
			stats.add(row.Result)
			next++
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for i, rec := range records {
		mu.Lock()
		stop := i > failAt
		mu.Unlock()
		if stop || gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			pctx, cancel := context.WithCancel(gctx)
			defer cancel()

			mu.Lock()
			skip := i > failAt
			if !skip {
				cancels[i] = cancel
			}
			mu.Unlock()
			if skip {
				return nil
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := s.resolve(pctx, rec.Name)

			mu.Lock()
			defer mu.Unlock()
			cancels[i] = nil

			// an earlier package aborted the run while this one was in flight
			if i > failAt {
				return nil
			}

			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if s.policy == PolicyStrict {
					s.logger.Printf("%s: %v (aborting)", rec.Name, err)
					errs[i] = err
					done[i] = true
					failAt = i
					for j := i + 1; j < n; j++ {
						if cancels[j] != nil {
							cancels[j]()
						}
					}
					return nil
				}
				s.logger.Printf("%s: %v (continuing)", rec.Name, err)
				res = license.ErrorResult(rec.Name, err)
			}

			results[i] = res
			done[i] = true
			return flush()
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	stats.Elapsed = time.Since(start)
	if err != nil {
		return stats, err
	}

	mu.Lock()
	defer mu.Unlock()
	if failAt < n {
		return stats, errs[failAt]
	}

	s.logger.Printf("Resolved %d packages: %d known, %d unknown, %d failed (%s)",
		stats.Total, stats.Resolved, stats.Unknown, stats.Failed, stats.Elapsed.Round(time.Millisecond))
	return stats, nil
}

// resolve bounds one package by the scanner timeout
func (s *Scanner) resolve(ctx context.Context, name string) (license.Result, error) {
	if s.timeout <= 0 {
		return s.resolver.Resolve(ctx, name)
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.resolver.Resolve(pctx, name)
	if err != nil && ctx.Err() == nil && errors.Is(pctx.Err(), context.DeadlineExceeded) {
		return res, &license.Error{
			Op:      "resolve",
			Package: name,
			Err:     fmt.Errorf("%w: %w: %w after %s", license.ErrResolverFailed, license.ErrStrategyExecution, license.ErrTimeout, s.timeout),
		}
	}
	return res, err
}

// Collect runs the scan and returns the emitted rows
func (s *Scanner) Collect(ctx context.Context, records []dpkg.Record) ([]Row, Stats, error) {
	rows := make([]Row, 0, len(records))
	stats, err := s.Run(ctx, records, func(r Row) error {
		rows = append(rows, r)
		return nil
	})
	return rows, stats, err
}
