package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arc-language/pkglicense/pkg/core"
	"github.com/arc-language/pkglicense/pkg/platform"
	"github.com/arc-language/pkglicense/pkg/resolvers"
)

func newResolversCmd(opts *options) *cobra.Command {
	var discover string

	cmd := &cobra.Command{
		Use:   "resolvers",
		Short: "List the resolver chain",
		Long: `List the configured resolvers in priority order and whether the
resource each one reads is present on this system.

With --discover, print a resolvers list for the executable plugins of a
directory instead, in file name order, ready to be edited into the
config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if discover != "" {
				return runDiscover(cmd, discover)
			}
			return runResolvers(cmd, opts.config)
		},
	}

	cmd.Flags().StringVar(&discover, "discover", "", "plugin directory to scan")
	return cmd
}

func runResolvers(cmd *cobra.Command, cfg *core.Config) error {
	out := cmd.OutOrStdout()
	host := platform.Detect(cfg)

	fmt.Fprintf(out, "Host: %s\n", host)
	if !host.CanEnumerate() {
		fmt.Fprintf(out, "Warning: neither %s nor dpkg-query is available\n", cfg.StatusFile)
	}
	fmt.Fprintf(out, "\nResolvers (policy: %s):\n", cfg.Policy)

	pos := 0
	for _, rc := range cfg.Resolvers {
		name := rc.Name
		if name == "" {
			name = rc.Type
		}

		if rc.Disabled {
			fmt.Fprintf(out, "   - %-16s %-16s disabled\n", name, rc.Type)
			continue
		}

		ok, desc := host.Check(cfg, rc)
		marker := "ok"
		if !ok {
			marker = "missing"
		}

		if rc.Type == resolvers.TypeExecDir && ok {
			plugins, err := resolvers.DiscoverPlugins(rc.Path)
			if err != nil {
				return err
			}
			for _, p := range plugins {
				pos++
				fmt.Fprintf(out, "  %2d %-16s %-16s %-7s %s\n", pos, p.Name, resolvers.TypeExec, marker, p.Command)
			}
			continue
		}

		pos++
		fmt.Fprintf(out, "  %2d %-16s %-16s %-7s %s\n", pos, name, rc.Type, marker, desc)
	}
	return nil
}

func runDiscover(cmd *cobra.Command, dir string) error {
	plugins, err := resolvers.DiscoverPlugins(dir)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(struct {
		Resolvers []core.ResolverConfig `yaml:"resolvers"`
	}{resolvers.PluginConfigs(plugins)})
	if err != nil {
		return fmt.Errorf("marshaling resolvers: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
