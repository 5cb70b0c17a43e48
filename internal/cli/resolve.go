package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/pkglicense"
)

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Resolve the license of the named packages",
		Long: `Run the resolver chain for each named package, installed or not, and
print "name: license (by resolver)".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args)
		},
	}
}

func runResolve(cmd *cobra.Command, opts *options, names []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	l, err := pkglicense.New(opts.config)
	if err != nil {
		return err
	}
	defer l.Close()

	lenient := opts.config.Policy == pkglicense.PolicyLenient.String()

	for _, name := range names {
		res, err := l.Resolve(ctx, name)
		if err != nil {
			if !lenient || ctx.Err() != nil {
				return err
			}
			logger.Warn("resolution failed", "package", name, "err", err)
			fmt.Fprintf(out, "%s: %s\n", name, pkglicense.UnknownError)
			continue
		}

		if res.Found() {
			fmt.Fprintf(out, "%s: %s (by %s)\n", name, res.License, res.ResolvedBy)
		} else {
			fmt.Fprintf(out, "%s: %s\n", name, res.License)
		}
	}
	return nil
}
