package resolvers

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/arc-language/pkglicense/pkg/license"
)

// Exec runs an external plugin executable. The package name is passed as
// the last argument and the license is read from standard output. Exit
// status 0 means the plugin ran; empty output then means "not found". Any
// other exit status is an execution error.
type Exec struct {
	ID      string
	Command string
	Args    []string
}

// NewExec creates a plugin strategy. The identifier defaults to the
// command's base name.
func NewExec(id, command string, args ...string) *Exec {
	if id == "" {
		id = filepath.Base(command)
	}
	return &Exec{ID: id, Command: command, Args: args}
}

// Name returns the strategy identifier
func (s *Exec) Name() string {
	return s.ID
}

// Probe runs the plugin for pkg
func (s *Exec) Probe(ctx context.Context, pkg string) (string, bool, error) {
	if err := license.ValidateName(pkg); err != nil {
		return "", false, err
	}

	args := append(append([]string(nil), s.Args...), pkg)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return "", false, license.Failed(fmt.Errorf("running %s: %w: %s", s.Command, err, msg))
		}
		return "", false, license.Failed(fmt.Errorf("running %s: %w", s.Command, err))
	}

	out := stdout.String()
	if license.Normalize(out) == "" {
		return "", false, nil
	}
	return out, true, nil
}
