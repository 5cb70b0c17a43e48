package resolvers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/pkglicense/pkg/core"
	"github.com/arc-language/pkglicense/pkg/license"
)

func names(strategies []license.Strategy) []string {
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = s.Name()
	}
	return out
}

func TestBuildDefaultChain(t *testing.T) {
	t.Parallel()

	cfg := core.DefaultConfig()
	set, err := Build(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	assert.Equal(t, []string{TypeDEP5, TypeCommonLicenses, TypeDebArchive, TypeRegistry}, names(set.Strategies))

	_, err = license.NewChain(set.Strategies)
	assert.NoError(t, err)
}

func TestBuildOrderRenameAndDisable(t *testing.T) {
	t.Parallel()

	cfg := core.DefaultConfig()
	cfg.Resolvers = []core.ResolverConfig{
		{Type: TypeExec, Name: "corp", Command: "/opt/licenses/lookup"},
		{Type: TypeRegistry, Path: t.TempDir(), Required: true},
		{Type: TypeDEP5, Disabled: true},
		{Type: TypeSQLite, Name: "inventory", Path: filepath.Join(t.TempDir(), "x.db")},
		{Type: TypeDEP5, Name: "copyright"},
	}

	set, err := Build(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	assert.Equal(t, []string{"corp", TypeRegistry, "inventory", "copyright"}, names(set.Strategies))

	reg, ok := set.Strategies[1].(*Registry)
	require.True(t, ok)
	assert.True(t, reg.Required)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rc   core.ResolverConfig
		want string
	}{
		{"unknown type", core.ResolverConfig{Type: "spdx-oracle"}, "unknown type"},
		{"exec without command", core.ResolverConfig{Type: TypeExec}, "needs a command"},
		{"sqlite without path", core.ResolverConfig{Type: TypeSQLite}, "needs a path"},
		{"exec-dir missing", core.ResolverConfig{Type: TypeExecDir, Path: "/nonexistent/plugins"}, "plugin directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := core.DefaultConfig()
			cfg.Resolvers = []core.ResolverConfig{{Type: TypeDEP5}, tt.rc}
			_, err := Build(cfg)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuildExecDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for name, mode := range map[string]os.FileMode{
		"20-vendor":  0o755,
		"10-distro":  0o755,
		"README":     0o644,
		".hidden":    0o755,
		"30-fallbak": 0o700,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), mode))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "15-subdir"), 0o755))

	plugins, err := DiscoverPlugins(dir)
	require.NoError(t, err)
	require.Len(t, plugins, 3)
	assert.Equal(t, filepath.Join(dir, "10-distro"), plugins[0].Command)

	cfg := core.DefaultConfig()
	cfg.Resolvers = []core.ResolverConfig{
		{Type: TypeDEP5},
		{Type: TypeExecDir, Path: dir},
		{Type: TypeRegistry},
	}
	set, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{TypeDEP5, "10-distro", "20-vendor", "30-fallbak", TypeRegistry}, names(set.Strategies))

	rcs := PluginConfigs(plugins)
	require.Len(t, rcs, 3)
	assert.Equal(t, core.ResolverConfig{Name: "20-vendor", Type: TypeExec, Command: filepath.Join(dir, "20-vendor")}, rcs[1])
}

func TestTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		TypeCommonLicenses, TypeDebArchive, TypeDEP5, TypeExec, TypeExecDir, TypeRegistry, TypeSQLite,
	}, Types())
}
