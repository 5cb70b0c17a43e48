package license

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// Chain holds an ordered list of strategies. Position in the list is the
// priority: earlier strategies are trusted more and later ones are never
// consulted once an earlier one answers.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *log.Logger
}

// Option configures a Chain
type Option func(*Chain)

// WithProbeTimeout bounds every single probe. Zero disables the bound.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Chain) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for per-probe debug output
func WithLogger(l *log.Logger) Option {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewChain creates a chain that queries strategies in the given order.
// Strategy names must be unique so that Result.ResolvedBy is unambiguous.
func NewChain(strategies []Strategy, opts ...Option) (*Chain, error) {
	seen := make(map[string]bool, len(strategies))
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("strategy at position %d is nil", i)
		}
		if s.Name() == "" {
			return nil, fmt.Errorf("strategy at position %d has no name", i)
		}
		if seen[s.Name()] {
			return nil, fmt.Errorf("duplicate strategy name %q", s.Name())
		}
		seen[s.Name()] = true
	}

	c := &Chain{
		strategies: append([]Strategy(nil), strategies...),
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Strategies returns the strategy names in priority order
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the license of pkg.
//
// The first strategy reporting found=true with non-empty normalized text
// wins. If none does, the result is Unknown with no provenance and a nil
// error. If a strategy fails, resolution of this package stops and the
// returned *Error matches both ErrResolverFailed and ErrStrategyExecution.
func (c *Chain) Resolve(ctx context.Context, pkg string) (Result, error) {
	if err := ValidateName(pkg); err != nil {
		return Result{}, &Error{Op: "resolve", Package: pkg, Err: err}
	}

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return Result{}, &Error{Op: "resolve", Package: pkg, Err: err}
		}

		raw, found, err := c.probe(ctx, s, pkg)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled by the caller, not a strategy fault
				return Result{}, &Error{Op: "resolve", Package: pkg, Strategy: s.Name(), Err: ctx.Err()}
			}
			return Result{}, &Error{
				Op:       "resolve",
				Package:  pkg,
				Strategy: s.Name(),
				Err:      fmt.Errorf("%w: %w", ErrResolverFailed, Failed(err)),
			}
		}
		if !found {
			c.logger.Printf("%s: %s: not found", pkg, s.Name())
			continue
		}

		normalized := Normalize(raw)
		if normalized == "" {
			c.logger.Printf("%s: %s: empty answer, skipping", pkg, s.Name())
			continue
		}

		c.logger.Printf("%s: %s: %s", pkg, s.Name(), normalized)
		return Result{
			Package:    pkg,
			Raw:        raw,
			License:    normalized,
			ResolvedBy: s.Name(),
		}, nil
	}

	return UnknownResult(pkg), nil
}

type probeResult struct {
	raw   string
	found bool
	err   error
}

// probe runs one strategy under the configured timeout. The probe runs in
// its own goroutine so a strategy that ignores its context still cannot
// hold the chain past the deadline.
func (c *Chain) probe(ctx context.Context, s Strategy, pkg string) (string, bool, error) {
	if c.timeout <= 0 {
		return s.Probe(ctx, pkg)
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan probeResult, 1)
	go func() {
		raw, found, err := s.Probe(probeCtx, pkg)
		done <- probeResult{raw: raw, found: found, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(probeCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", false, c.timeoutError()
		}
		return r.raw, r.found, r.err
	case <-probeCtx.Done():
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, c.timeoutError()
	}
}

func (c *Chain) timeoutError() error {
	return fmt.Errorf("%w: %w after %s", ErrStrategyExecution, ErrTimeout, c.timeout)
}
