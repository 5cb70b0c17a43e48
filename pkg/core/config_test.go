package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, "strict", cfg.Policy)
	assert.Len(t, cfg.Resolvers, 4)
}

func TestDefaultResolversOrder(t *testing.T) {
	t.Parallel()

	var types []string
	for _, rc := range DefaultResolvers() {
		types = append(types, rc.Type)
	}
	assert.Equal(t, []string{"dep5", "common-licenses", "deb-archive", "registry"}, types)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
format: csv
policy: lenient
jobs: 8
timeout: 5s
doc_dir: /srv/doc
resolvers:
  - type: sqlite
    name: inventory
    path: /srv/licenses.db
  - type: dep5
  - type: exec
    command: /usr/local/bin/lookup-license
    args: ["--quiet"]
  - type: registry
    required: true
    disabled: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, "lenient", cfg.Policy)
	assert.Equal(t, 8, cfg.Jobs)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/srv/doc", cfg.DocDir)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultConfig().StatusFile, cfg.StatusFile)

	require.Len(t, cfg.Resolvers, 4)
	assert.Equal(t, ResolverConfig{Name: "inventory", Type: "sqlite", Path: "/srv/licenses.db"}, cfg.Resolvers[0])
	assert.Equal(t, []string{"--quiet"}, cfg.Resolvers[2].Args)
	assert.True(t, cfg.Resolvers[3].Required)
	assert.True(t, cfg.Resolvers[3].Disabled)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "format: [", "parsing config"},
		{"bad format", "format: pdf", "unknown format"},
		{"bad policy", "policy: yolo", "unknown policy"},
		{"zero jobs", "jobs: 0", "jobs must be at least 1"},
		{"negative timeout", "timeout: -1s", "timeout must not be negative"},
		{"missing type", "resolvers:\n  - name: x\n", "type is required"},
		{"exec without command", "resolvers:\n  - type: exec\n", "needs a command"},
		{"sqlite without path", "resolvers:\n  - type: sqlite\n", "needs a path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Policy = "lenient"
	cfg.Timeout = 90 * time.Second
	cfg.Resolvers = append(cfg.Resolvers, ResolverConfig{Type: "exec", Name: "corp", Command: "/bin/true"})

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultRegistryDirFromEnv(t *testing.T) {
	t.Setenv("PKGLICENSE_REGISTRY", "/tmp/custom-registry")
	assert.Equal(t, "/tmp/custom-registry", DefaultConfig().RegistryDir)
}
