package resolvers

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/arc-language/pkglicense/pkg/core"
	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/license"
)

// Strategy types accepted in configuration
const (
	TypeDEP5           = "dep5"
	TypeCommonLicenses = "common-licenses"
	TypeRegistry       = "registry"
	TypeSQLite         = "sqlite"
	TypeDebArchive     = "deb-archive"
	TypeExec           = "exec"
	TypeExecDir        = "exec-dir"
)

type factory func(cfg *core.Config, rc core.ResolverConfig) (license.Strategy, error)

var factories = map[string]factory{
	TypeDEP5: func(cfg *core.Config, rc core.ResolverConfig) (license.Strategy, error) {
		return NewDEP5(firstNonEmpty(rc.Path, cfg.DocDir)), nil
	},
	TypeCommonLicenses: func(cfg *core.Config, rc core.ResolverConfig) (license.Strategy, error) {
		return NewCommonLicenses(firstNonEmpty(rc.Path, cfg.DocDir)), nil
	},
	TypeRegistry: func(cfg *core.Config, rc core.ResolverConfig) (license.Strategy, error) {
		return NewRegistry(firstNonEmpty(rc.Path, cfg.RegistryDir), rc.Required), nil
	},
	TypeSQLite: func(_ *core.Config, rc core.ResolverConfig) (license.Strategy, error) {
		if rc.Path == "" {
			return nil, errors.New("sqlite resolver needs a path")
		}
		return NewSQLite(rc.Path), nil
	},
	TypeDebArchive: func(cfg *core.Config, rc core.ResolverConfig) (license.Strategy, error) {
		// An undetectable architecture only widens the match to every cached arch
		arch, _ := dpkg.DetectArchitecture()
		return NewDebArchive(firstNonEmpty(rc.Path, cfg.ArchiveDir), arch), nil
	},
	TypeExec: func(_ *core.Config, rc core.ResolverConfig) (license.Strategy, error) {
		if rc.Command == "" {
			return nil, errors.New("exec resolver needs a command")
		}
		return NewExec(rc.Name, rc.Command, rc.Args...), nil
	},
}

// Types returns the known strategy types, sorted
func Types() []string {
	types := make([]string, 0, len(factories)+1)
	for t := range factories {
		types = append(types, t)
	}
	types = append(types, TypeExecDir)
	sort.Strings(types)
	return types
}

// Set is the ordered strategy list built from configuration
type Set struct {
	Strategies []license.Strategy
}

// Build creates the strategies listed in cfg.Resolvers, in order, skipping
// disabled entries. An exec-dir entry expands in place to one exec strategy
// per plugin, in lexical file name order.
func Build(cfg *core.Config) (*Set, error) {
	set := &Set{}
	for i, rc := range cfg.Resolvers {
		if rc.Disabled {
			continue
		}

		if rc.Type == TypeExecDir {
			plugins, err := DiscoverPlugins(rc.Path)
			if err != nil {
				set.Close()
				return nil, fmt.Errorf("resolver %d (%s): %w", i, rc.Type, err)
			}
			for _, p := range plugins {
				set.Strategies = append(set.Strategies, NewExec(p.Name, p.Command, rc.Args...))
			}
			continue
		}

		f, ok := factories[rc.Type]
		if !ok {
			set.Close()
			return nil, fmt.Errorf("resolver %d: unknown type %q (known: %v)", i, rc.Type, Types())
		}

		s, err := f(cfg, rc)
		if err != nil {
			set.Close()
			return nil, fmt.Errorf("resolver %d (%s): %w", i, rc.Type, err)
		}
		if rc.Name != "" {
			rename(s, rc.Name)
		}
		set.Strategies = append(set.Strategies, s)
	}
	return set, nil
}

// Close releases strategies holding resources (database handles)
func (s *Set) Close() error {
	var errs []error
	for _, st := range s.Strategies {
		if c, ok := st.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func rename(s license.Strategy, name string) {
	switch v := s.(type) {
	case *DEP5:
		v.ID = name
	case *CommonLicenses:
		v.ID = name
	case *Registry:
		v.ID = name
	case *SQLite:
		v.ID = name
	case *DebArchive:
		v.ID = name
	case *Exec:
		v.ID = name
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
