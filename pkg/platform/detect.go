// Package platform inspects the host for the resources license resolution
// depends on.
package platform

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/arc-language/pkglicense/pkg/core"
	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/registry"
)

// Host represents the detected system
type Host struct {
	OS          string            // linux, darwin, windows
	Arch        dpkg.Architecture // Debian architecture, empty if unknown
	DpkgQuery   string            // Path of dpkg-query, empty if not installed
	StatusFile  bool              // dpkg status database readable
	DocDir      bool              // /usr/share/doc present
	ArchiveDir  bool              // APT archive cache present
	RegistryDir bool              // License registry synced
}

// Detect inspects the paths named in cfg
func Detect(cfg *core.Config) *Host {
	arch, _ := dpkg.DetectArchitecture()

	h := &Host{
		OS:          runtime.GOOS,
		Arch:        arch,
		StatusFile:  fileExists(cfg.StatusFile),
		DocDir:      dirExists(cfg.DocDir),
		ArchiveDir:  dirExists(cfg.ArchiveDir),
		RegistryDir: registrySynced(cfg.RegistryDir),
	}
	h.DpkgQuery, _ = exec.LookPath("dpkg-query")
	return h
}

// CanEnumerate reports whether installed packages can be listed at all
func (h *Host) CanEnumerate() bool {
	return h.StatusFile || h.DpkgQuery != ""
}

// Check reports whether the resource behind a resolver entry is present,
// with a short description for listings
func (h *Host) Check(cfg *core.Config, rc core.ResolverConfig) (bool, string) {
	switch rc.Type {
	case "dep5", "common-licenses":
		return pathStatus(rc.Path, cfg.DocDir, h.DocDir, dirExists)
	case "deb-archive":
		return pathStatus(rc.Path, cfg.ArchiveDir, h.ArchiveDir, dirExists)
	case "registry":
		ok, desc := pathStatus(rc.Path, cfg.RegistryDir, h.RegistryDir, registrySynced)
		if !ok {
			desc += " (run sync)"
		}
		return ok, desc
	case "sqlite":
		return fileExists(rc.Path), rc.Path
	case "exec":
		if path, err := exec.LookPath(rc.Command); err == nil {
			return true, path
		}
		return false, rc.Command + " not found"
	case "exec-dir":
		return dirExists(rc.Path), rc.Path
	default:
		return false, fmt.Sprintf("unknown type %q", rc.Type)
	}
}

// String returns a string representation of the host
func (h *Host) String() string {
	query := h.DpkgQuery
	if query == "" {
		query = "none"
	}
	return fmt.Sprintf("%s/%s (dpkg-query: %s, status file: %s, doc dir: %s, archives: %s, registry: %s)",
		h.OS, h.Arch, query, yesNo(h.StatusFile), yesNo(h.DocDir), yesNo(h.ArchiveDir), yesNo(h.RegistryDir))
}

func registrySynced(dir string) bool {
	return dir != "" && registry.New(dir).Available()
}

// pathStatus uses the detected flag unless the entry overrides the path
func pathStatus(override, dflt string, detected bool, exists func(string) bool) (bool, string) {
	if override != "" {
		return exists(override), override
	}
	return detected, dflt
}
