package resolvers

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// DebArchive reads the copyright file out of a .deb left in the APT cache.
// It helps for packages whose documentation was stripped from the system
// (e.g. by dpkg path-exclude rules in minimal images).
type DebArchive struct {
	ID   string
	Dir  string
	Arch dpkg.Architecture
}

// NewDebArchive creates a strategy over the archive cache dir
func NewDebArchive(dir string, arch dpkg.Architecture) *DebArchive {
	if dir == "" {
		dir = dpkg.DefaultArchiveDir
	}
	return &DebArchive{ID: TypeDebArchive, Dir: dir, Arch: arch}
}

// Name returns the strategy identifier
func (s *DebArchive) Name() string {
	return s.ID
}

// Probe parses the DEP-5 copyright file of the newest cached archive
func (s *DebArchive) Probe(_ context.Context, pkg string) (string, bool, error) {
	if err := license.ValidateName(pkg); err != nil {
		return "", false, err
	}

	archives, err := dpkg.FindArchives(s.Dir, pkg, s.Arch)
	if err != nil {
		return "", false, license.Failed(err)
	}
	if len(archives) == 0 {
		return "", false, nil
	}

	deb := archives[len(archives)-1]
	data, err := dpkg.ReadDebMember(deb, path.Join("usr/share/doc", pkg, "copyright"))
	if errors.Is(err, dpkg.ErrMemberNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, license.Failed(fmt.Errorf("reading %s: %w", deb, err))
	}

	lic, ok := ParseDEP5(string(data))
	return lic, ok, nil
}
