// Package dpkgtest builds small .deb archives and status files for tests.
package dpkgtest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression selects the data.tar member flavour
type Compression string

const (
	None Compression = ""
	Gzip Compression = ".gz"
	XZ   Compression = ".xz"
	Zstd Compression = ".zst"
)

// WriteDeb writes dir/<name>_<version>_<arch>.deb whose data archive
// contains files (path -> content) and returns its path.
func WriteDeb(t testing.TB, dir, name, version, arch string, c Compression, files map[string]string) string {
	t.Helper()

	data := dataTar(t, c, files)
	path := filepath.Join(dir, name+"_"+version+"_"+arch+".deb")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	w := ar.NewWriter(f)
	if err := w.WriteGlobalHeader(); err != nil {
		t.Fatalf("writing ar header: %v", err)
	}
	members := []struct {
		name string
		body []byte
	}{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar.gz", gzipBytes(t, tarBytes(t, map[string]string{"./control": "Package: " + name + "\n"}))},
		{"data.tar" + string(c), data},
	}
	for _, m := range members {
		hdr := &ar.Header{Name: m.name, Size: int64(len(m.body)), Mode: 0o644, ModTime: time.Unix(0, 0)}
		if err := w.WriteHeader(hdr); err != nil {
			t.Fatalf("writing ar member header %s: %v", m.name, err)
		}
		if _, err := w.Write(m.body); err != nil {
			t.Fatalf("writing ar member %s: %v", m.name, err)
		}
	}
	return path
}

func dataTar(t testing.TB, c Compression, files map[string]string) []byte {
	t.Helper()

	raw := tarBytes(t, files)
	switch c {
	case Gzip:
		return gzipBytes(t, raw)
	case XZ:
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("creating xz writer: %v", err)
		}
		mustCopy(t, w, raw)
		if err := w.Close(); err != nil {
			t.Fatalf("closing xz writer: %v", err)
		}
		return buf.Bytes()
	case Zstd:
		var buf bytes.Buffer
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("creating zstd writer: %v", err)
		}
		mustCopy(t, w, raw)
		if err := w.Close(); err != nil {
			t.Fatalf("closing zstd writer: %v", err)
		}
		return buf.Bytes()
	default:
		return raw
	}
}

func tarBytes(t testing.TB, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range names {
		body := files[name]
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %s: %v", name, err)
		}
		mustCopy(t, tw, []byte(body))
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	return buf.Bytes()
}

func gzipBytes(t testing.TB, raw []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	mustCopy(t, w, raw)
	if err := w.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

func mustCopy(t testing.TB, w io.Writer, b []byte) {
	t.Helper()
	if _, err := w.Write(b); err != nil {
		t.Fatalf("writing: %v", err)
	}
}
