package resolvers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arc-language/pkglicense/pkg/core"
)

// Plugin is an executable found in a plugin directory
type Plugin struct {
	Name    string // File name, used as the strategy identifier
	Command string // Absolute path
}

// DiscoverPlugins lists the executable regular files of dir sorted by file
// name. Hidden files are skipped.
func DiscoverPlugins(dir string) ([]Plugin, error) {
	if dir == "" {
		return nil, errors.New("plugin directory not set")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading plugin directory: %w", err)
	}

	var plugins []Plugin
	for _, e := range entries {
		if e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		plugins = append(plugins, Plugin{Name: e.Name(), Command: filepath.Join(abs, e.Name())})
	}

	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	return plugins, nil
}

// PluginConfigs turns discovered plugins into explicit exec entries, ready
// to be pasted into the resolvers list of the configuration
func PluginConfigs(plugins []Plugin) []core.ResolverConfig {
	out := make([]core.ResolverConfig, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, core.ResolverConfig{Name: p.Name, Type: TypeExec, Command: p.Command})
	}
	return out
}
