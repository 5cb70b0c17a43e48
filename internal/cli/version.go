package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0" // set via -ldflags
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the build information printed by the version command
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	if c != "" {
		commit = c
	}
	if d != "" {
		date = d
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pkglicense version %s\n", version)
			fmt.Fprintf(out, "commit: %s, built: %s\n", commit, date)
			fmt.Fprintln(out, "https://github.com/arc-language/pkglicense")
		},
	}
}
