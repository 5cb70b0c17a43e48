package resolvers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/dpkg/dpkgtest"
	"github.com/arc-language/pkglicense/pkg/license"
)

func TestRegistryProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "curl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "curl", "index.toml"),
		[]byte("name = \"curl\"\nlicense = \"curl\"\naliases = [\"libcurl4\"]\n"), 0o644))

	s := NewRegistry(dir, false)
	ctx := context.Background()

	text, found, err := s.Probe(ctx, "libcurl4")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "curl", text)

	_, found, err = s.Probe(ctx, "wget")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegistryProbeNotSynced(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "never-synced")

	optional := NewRegistry(missing, false)
	_, found, err := optional.Probe(context.Background(), "curl")
	require.NoError(t, err)
	assert.False(t, found)

	required := NewRegistry(missing, true)
	_, _, err = required.Probe(context.Background(), "curl")
	assert.ErrorIs(t, err, license.ErrStrategyExecution)
}

// writeLicenseDB creates a license database at path
func writeLicenseDB(t *testing.T, path string, rows ...string) {
	t.Helper()

	dsn, err := sqliteURI(path, "rwc")
	require.NoError(t, err)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE licenses (package TEXT PRIMARY KEY, license TEXT NOT NULL)`)
	require.NoError(t, err)
	for i := 0; i+1 < len(rows); i += 2 {
		_, err = db.Exec(`INSERT INTO licenses (package, license) VALUES (?, ?)`, rows[i], rows[i+1])
		require.NoError(t, err)
	}
}

func TestSQLiteProbe(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "licenses.db")
	writeLicenseDB(t, path, "openssl", "Apache-2.0", "bash", "GPL-3+")

	s := NewSQLite(path)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	text, found, err := s.Probe(ctx, "openssl")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Apache-2.0", text)

	_, found, err = s.Probe(ctx, "dash")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteProbeEscapedPath(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "odd?dir#1 %20")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "licenses.db")
	writeLicenseDB(t, path, "zlib1g", "Zlib")

	_, err := os.Stat(path)
	require.NoError(t, err)

	s := NewSQLite(path)
	t.Cleanup(func() { _ = s.Close() })

	text, found, err := s.Probe(context.Background(), "zlib1g")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Zlib", text)
}

func TestSQLiteURI(t *testing.T) {
	t.Parallel()

	uri, err := sqliteURI("/var/lib/odd?dir#1/licenses.db", "ro")
	require.NoError(t, err)
	assert.Equal(t, "file:///var/lib/odd%3Fdir%231/licenses.db?mode=ro", uri)
}

func TestSQLiteProbeMissingDatabase(t *testing.T) {
	t.Parallel()

	s := NewSQLite(filepath.Join(t.TempDir(), "absent.db"))
	_, _, err := s.Probe(context.Background(), "openssl")
	assert.ErrorIs(t, err, license.ErrStrategyExecution)
	assert.NoError(t, s.Close())
}

func TestDebArchiveProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dpkgtest.WriteDeb(t, dir, "jq", "1.6-1", "amd64", dpkgtest.Gzip, map[string]string{
		"./usr/share/doc/jq/copyright": "Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n\nFiles: *\nLicense: CC-BY-3.0\n",
	})
	dpkgtest.WriteDeb(t, dir, "jq", "1.7-1", "amd64", dpkgtest.XZ, map[string]string{
		"./usr/share/doc/jq/copyright": "Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n\nFiles: *\nLicense: MIT\n",
	})
	dpkgtest.WriteDeb(t, dir, "nodoc", "2.0", "all", dpkgtest.Zstd, map[string]string{
		"./usr/bin/nodoc": "#!/bin/sh\n",
	})

	s := NewDebArchive(dir, dpkg.ArchAmd64)
	ctx := context.Background()

	text, found, err := s.Probe(ctx, "jq")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "MIT", text)

	_, found, err = s.Probe(ctx, "nodoc")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.Probe(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDebArchiveProbePicksNewestVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	copyright := "Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n\nFiles: *\nLicense: %s\n"
	dpkgtest.WriteDeb(t, dir, "wget", "1.9-1", "amd64", dpkgtest.Gzip, map[string]string{
		"./usr/share/doc/wget/copyright": fmt.Sprintf(copyright, "GPL-2+"),
	})
	dpkgtest.WriteDeb(t, dir, "wget", "1.10-1", "amd64", dpkgtest.Gzip, map[string]string{
		"./usr/share/doc/wget/copyright": fmt.Sprintf(copyright, "GPL-3+"),
	})

	text, found, err := NewDebArchive(dir, dpkg.ArchAmd64).Probe(context.Background(), "wget")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "GPL-3+", text)
}

// script writes a shell script run through /bin/sh, so the test never
// executes a file it just wrote
func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExecProbe(t *testing.T) {
	t.Parallel()

	plugin := script(t, `case "$1" in
  bash) printf 'GPL-3.0-or-later\n' ;;
  quiet) ;;
  *) echo "no idea about $1" >&2; exit 3 ;;
esac
`)

	s := NewExec("", "/bin/sh", plugin)
	assert.Equal(t, "sh", s.Name())
	ctx := context.Background()

	text, found, err := s.Probe(ctx, "bash")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "GPL-3.0-or-later", license.Normalize(text))

	_, found, err = s.Probe(ctx, "quiet")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = s.Probe(ctx, "vim")
	require.ErrorIs(t, err, license.ErrStrategyExecution)
	assert.ErrorContains(t, err, "no idea about vim")

	_, _, err = s.Probe(ctx, "-rf")
	assert.ErrorIs(t, err, license.ErrInvalidInput)
}

func TestExecProbeCancelled(t *testing.T) {
	t.Parallel()

	plugin := script(t, "exec sleep 5\n")
	s := NewExec("slow", "/bin/sh", plugin)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := s.Probe(ctx, "bash")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}
