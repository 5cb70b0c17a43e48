package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/pkglicense/pkg/index"
)

func newSyncCmd(opts *options) *cobra.Command {
	var url, branch string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Update the bundled license registry",
		Long: `Shallow-clone the license registry repository and replace the local
registry directory with its licenses/ tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			if url == "" {
				url = cfg.RegistryURL
			}
			if branch == "" {
				branch = cfg.RegistryBranch
			}

			logger := loggerFromContext(cmd.Context())
			logger.Info("Updating license registry", "url", url, "branch", branch)

			prog := newProgress(logger)
			res, err := index.Sync(cmd.Context(), index.Options{
				URL:      url,
				Branch:   branch,
				Dir:      cfg.RegistryDir,
				Progress: cmd.ErrOrStderr(),
				Logger:   cfg.Logger,
			})
			if err != nil {
				return err
			}

			prog.done("License registry updated", "entries", res.Entries, "commit", res.Commit)
			fmt.Fprintln(cmd.OutOrStdout(), cfg.RegistryDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "registry repository (default from config)")
	cmd.Flags().StringVar(&branch, "branch", "", "registry branch (default from config)")
	return cmd
}
