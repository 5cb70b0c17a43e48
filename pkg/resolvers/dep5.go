package resolvers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// DEP5 reads the machine-readable copyright file shipped in
// /usr/share/doc/<pkg>/copyright
type DEP5 struct {
	ID     string
	DocDir string
}

// NewDEP5 creates a DEP-5 strategy rooted at docDir
func NewDEP5(docDir string) *DEP5 {
	if docDir == "" {
		docDir = dpkg.DefaultDocDir
	}
	return &DEP5{ID: TypeDEP5, DocDir: docDir}
}

// Name returns the strategy identifier
func (s *DEP5) Name() string {
	return s.ID
}

// Probe parses the package's copyright file. A missing file or a file that
// is not in DEP-5 format is "not found".
func (s *DEP5) Probe(_ context.Context, pkg string) (string, bool, error) {
	if err := license.ValidateName(pkg); err != nil {
		return "", false, err
	}

	text, ok, err := readCopyright(s.DocDir, pkg)
	if err != nil || !ok {
		return "", false, err
	}

	lic, ok := ParseDEP5(text)
	return lic, ok, nil
}

// readCopyright returns the copyright file of pkg, or ok=false if the
// package ships none
func readCopyright(docDir, pkg string) (string, bool, error) {
	path := filepath.Join(docDir, pkg, "copyright")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, license.Failed(fmt.Errorf("reading %s: %w", path, err))
	}
	return string(data), true, nil
}

// paragraph is one blank-line separated block of a control-style file.
// Keys are lower-cased; values keep continuation lines joined by "\n".
type paragraph map[string]string

func parseParagraphs(text string) []paragraph {
	var paras []paragraph
	var current paragraph
	var lastKey string

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if current != nil {
				paras = append(paras, current)
				current = nil
			}
			lastKey = ""
			continue
		}

		// Comment lines are allowed anywhere in DEP-5 files
		if strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if current != nil && lastKey != "" {
				current[lastKey] += "\n" + strings.TrimSpace(line)
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if current == nil {
			current = paragraph{}
		}
		lastKey = strings.ToLower(strings.TrimSpace(key))
		current[lastKey] = strings.TrimSpace(value)
	}

	if current != nil {
		paras = append(paras, current)
	}
	return paras
}

// isDEP5Header reports whether the first paragraph declares the
// machine-readable copyright format
func isDEP5Header(p paragraph) bool {
	format := p["format"]
	if format == "" {
		format = p["format-specification"]
	}
	format = strings.ToLower(format)
	return strings.Contains(format, "copyright-format") || strings.Contains(format, "dep5") || strings.Contains(format, "dep-5")
}

// shortName returns the first line of a License field
func shortName(value string) string {
	first, _, _ := strings.Cut(value, "\n")
	return strings.TrimSpace(first)
}

// ParseDEP5 extracts the license of a package from a DEP-5 copyright file.
//
// The header License field wins when present. Otherwise the license of the
// "Files: *" paragraph is used, and failing that the distinct licenses of
// all Files paragraphs in order of appearance, joined with " and ".
func ParseDEP5(text string) (string, bool) {
	paras := parseParagraphs(text)
	if len(paras) == 0 || !isDEP5Header(paras[0]) {
		return "", false
	}

	if lic := shortName(paras[0]["license"]); lic != "" {
		return lic, true
	}

	var all []string
	seen := map[string]bool{}
	for _, p := range paras[1:] {
		files, ok := p["files"]
		if !ok {
			continue // standalone License paragraph
		}
		lic := shortName(p["license"])
		if lic == "" {
			continue
		}
		if strings.TrimSpace(files) == "*" {
			return lic, true
		}
		if !seen[lic] {
			seen[lic] = true
			all = append(all, lic)
		}
	}

	if len(all) == 0 {
		return "", false
	}
	return strings.Join(all, " and "), true
}
