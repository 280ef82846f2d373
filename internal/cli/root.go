package cli

import (
	"github.com/brandonbloom/launch/internal/version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	root string
}

func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "launchctl",
		Short:         "Inspect and prepare the directory served by launch",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "launcher directory (default: directory holding this binary, or $LAUNCH_ROOT)")

	cmd.AddCommand(
		newDoctorCommand(opts),
		newEnvCommand(opts),
		newInitCommand(opts),
		newVersionCommand(),
	)

	return cmd
}
