package pkglicense

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const status = `Package: bash
Status: install ok installed
Version: 5.2.15-2
Architecture: amd64
Description: GNU Bourne Again SHell
 Bash is an sh-compatible command language interpreter.

Package: curl
Status: install ok installed
Version: 7.88.1-10
Architecture: amd64
Description: command line tool for transferring data with URL syntax

Package: removed-thing
Status: deinstall ok config-files
Version: 1.0
Architecture: all
Description: gone

Package: mystery
Status: install ok installed
Version: 0.1
Architecture: all
Description: nobody knows
`

func fixture(t *testing.T) *Config {
	t.Helper()

	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.StatusFile = filepath.Join(root, "status")
	cfg.DocDir = filepath.Join(root, "doc")
	cfg.ArchiveDir = filepath.Join(root, "archives")
	cfg.RegistryDir = filepath.Join(root, "licenses")
	cfg.Jobs = 2
	cfg.Resolvers = []ResolverConfig{{Type: "dep5"}, {Type: "registry"}}

	write := func(path, body string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(cfg.StatusFile, status)
	write(filepath.Join(cfg.DocDir, "bash", "copyright"),
		"Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n\nFiles: *\nLicense: GPL-3+\n")
	write(filepath.Join(cfg.RegistryDir, "curl", "index.toml"), "name = \"curl\"\nlicense = \"curl\"\n")
	return cfg
}

func TestReportCSV(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)
	cfg.Format = "csv"

	l, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	assert.Equal(t, []string{"dep5", "registry"}, l.Strategies())

	var out bytes.Buffer
	stats, err := l.Report(context.Background(), &out)
	require.NoError(t, err)

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"St", "Name", "Version", "Arch", "Description", "License"}, rows[0])
	assert.Equal(t, []string{"ii", "bash", "5.2.15-2", "amd64", "GNU Bourne Again SHell", "GPL-3+"}, rows[1])
	assert.Equal(t, "curl", rows[2][5])
	assert.Equal(t, []string{"ii", "mystery", "0.1", "all", "nobody knows", Unknown}, rows[3])

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, map[string]int{"dep5": 1, "registry": 1}, stats.ByStrategy)
}

func TestReportStrictFailure(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)
	// a directory where the copyright file should be makes dep5 fail
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.DocDir, "curl", "copyright"), 0o755))

	l, err := New(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = l.Report(context.Background(), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolverFailed)
	assert.ErrorIs(t, err, ErrStrategyExecution)
	assert.Contains(t, err.Error(), "curl")
	assert.Contains(t, err.Error(), "dep5")

	assert.Contains(t, out.String(), "bash")
	assert.NotContains(t, out.String(), "mystery")
}

func TestReportLenientFailure(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)
	cfg.Policy = "lenient"
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.DocDir, "curl", "copyright"), 0o755))

	l, err := New(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	stats, err := l.Report(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5) // header, separator, 3 packages
	assert.True(t, strings.HasSuffix(lines[3], UnknownError), lines[3])
	assert.True(t, strings.HasSuffix(lines[4], " "+Unknown), lines[4])
}

func TestResolveWithExtraStrategy(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)
	override := StrategyFunc{ID: "override", Fn: func(_ context.Context, pkg string) (string, bool, error) {
		return "Proprietary", pkg == "bash", nil
	}}

	l, err := New(cfg, override)
	require.NoError(t, err)
	assert.Equal(t, []string{"override", "dep5", "registry"}, l.Strategies())

	res, err := l.Resolve(context.Background(), "bash")
	require.NoError(t, err)
	assert.Equal(t, "Proprietary", res.License)
	assert.Equal(t, "override", res.ResolvedBy)

	_, err = l.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Format = "xml"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Resolvers = []ResolverConfig{{Type: "dep5"}, {Type: "dep5"}}
	_, err = New(cfg)
	assert.ErrorContains(t, err, "duplicate strategy name")
}
