package resolvers

import (
	"context"
	"errors"

	"github.com/arc-language/pkglicense/pkg/license"
	"github.com/arc-language/pkglicense/pkg/registry"
)

// Registry looks packages up in the bundled TOML license registry
type Registry struct {
	ID       string
	Required bool // A missing registry is an execution error instead of "not found"
	reg      *registry.Registry
}

// NewRegistry creates a registry strategy over dir
func NewRegistry(dir string, required bool) *Registry {
	return &Registry{ID: TypeRegistry, Required: required, reg: registry.New(dir)}
}

// Name returns the strategy identifier
func (s *Registry) Name() string {
	return s.ID
}

// Probe returns the license recorded for pkg
func (s *Registry) Probe(_ context.Context, pkg string) (string, bool, error) {
	if err := license.ValidateName(pkg); err != nil {
		return "", false, err
	}

	lic, err := s.reg.License(pkg)
	switch {
	case err == nil:
		return lic, true, nil
	case errors.Is(err, registry.ErrNotFound):
		return "", false, nil
	case errors.Is(err, registry.ErrNotSynced) && !s.Required:
		return "", false, nil
	default:
		return "", false, license.Failed(err)
	}
}
