package dpkg

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrMemberNotFound is returned when a .deb does not contain the requested file
var ErrMemberNotFound = errors.New("member not found in archive")

// maxMemberSize caps how much of a single archive member is read into memory
const maxMemberSize = 4 << 20

// ReadDebMember returns the contents of one file from the data archive of a
// .deb package. member is a path such as "usr/share/doc/wget/copyright";
// a leading "./" or "/" is ignored.
func ReadDebMember(debPath, member string) ([]byte, error) {
	// Open the .deb file (which is an ar archive)
	f, err := os.Open(debPath)
	if err != nil {
		return nil, fmt.Errorf("opening .deb file: %w", err)
	}
	defer f.Close()

	want := cleanMember(member)
	arReader := ar.NewReader(f)

	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ar entry: %w", err)
		}

		// Look for data.tar.* (data.tar.xz, data.tar.gz, data.tar.zst, etc.)
		name := strings.TrimSuffix(strings.TrimSpace(header.Name), "/")
		if strings.HasPrefix(name, "data.tar") {
			return readTarMember(arReader, name, want)
		}
	}

	return nil, fmt.Errorf("no data.tar.* found in %s", debPath)
}

// readTarMember scans a possibly compressed tar stream for one regular file
func readTarMember(r io.Reader, name, want string) ([]byte, error) {
	var tarReader *tar.Reader

	// Handle different compression formats
	switch {
	case strings.HasSuffix(name, ".gz"):
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gzReader.Close()
		tarReader = tar.NewReader(gzReader)
	case strings.HasSuffix(name, ".xz"):
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		tarReader = tar.NewReader(xzReader)
	case strings.HasSuffix(name, ".zst"):
		zstReader, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zstReader.Close()
		tarReader = tar.NewReader(zstReader)
	case name == "data.tar":
		tarReader = tar.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported data archive compression: %s", name)
	}

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}

		if cleanMember(header.Name) != want {
			continue
		}
		if header.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("%s: %w (not a regular file)", want, ErrMemberNotFound)
		}

		data, err := io.ReadAll(io.LimitReader(tarReader, maxMemberSize))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", want, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("%s: %w", want, ErrMemberNotFound)
}

func cleanMember(name string) string {
	name = strings.TrimPrefix(name, "./")
	return strings.TrimPrefix(name, "/")
}

// FindArchives lists cached .deb files for a package, restricted to the given
// architecture and "all". Results are sorted by Debian version, oldest
// first, so the last entry is the newest archive.
func FindArchives(dir, name string, arch Architecture) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, globEscape(name)+"_*.deb"))
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}

	type archive struct {
		path    string
		version Version
	}

	var found []archive
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".deb")
		parts := strings.Split(base, "_")
		if len(parts) != 3 || parts[0] != name {
			continue
		}
		if arch.Accepts(Architecture(parts[2])) {
			found = append(found, archive{path: m, version: ParseVersion(archiveVersion(parts[1]))})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if c := found[i].version.Compare(found[j].version); c != 0 {
			return c < 0
		}
		return found[i].path < found[j].path
	})

	out := make([]string, len(found))
	for i, a := range found {
		out[i] = a.path
	}
	return out, nil
}

// globEscape quotes glob metacharacters; package names may contain '+'
// but never '*', '?' or '[', so this only guards against odd input.
func globEscape(s string) string {
	r := strings.NewReplacer("*", `\*`, "?", `\?`, "[", `\[`, `\`, `\\`)
	return r.Replace(s)
}
