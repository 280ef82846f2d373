package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/brandonbloom/launch/internal/envutil"
	"github.com/brandonbloom/launch/internal/launcher"
	"github.com/spf13/cobra"
)

func newEnvCommand(opts *rootOptions) *cobra.Command {
	var shell string
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print shell commands that reproduce the launcher's environment",
		Long: `Print the variables launch sets before starting the entry point, as
shell commands. Evaluate them to work inside the same environment:

  eval "$(launchctl env)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lay, err := loadLayout(opts)
			if err != nil {
				return err
			}
			before := os.Environ()
			after, err := launcher.ActivatedEnv(lay, before)
			if err != nil {
				return err
			}
			return writeEnvScript(cmd.OutOrStdout(), shell, lay.Root, envutil.Diff(before, after))
		},
	}
	cmd.Flags().StringVar(&shell, "shell", "sh", "output syntax: sh or fish")
	return cmd
}

func writeEnvScript(w io.Writer, shell, root string, changes []envutil.Change) error {
	if shell != "sh" && shell != "fish" {
		return fmt.Errorf("unsupported shell %q (want sh or fish)", shell)
	}
	fmt.Fprintf(w, "# launch environment for %s\n", root)
	for _, c := range changes {
		switch {
		case shell == "fish" && c.Unset:
			fmt.Fprintf(w, "set -e %s\n", c.Key)
		case shell == "fish":
			fmt.Fprintf(w, "set -gx %s %s\n", c.Key, fishQuote(c.Value))
		case c.Unset:
			fmt.Fprintf(w, "unset %s\n", c.Key)
		default:
			fmt.Fprintf(w, "export %s=%s\n", c.Key, shellQuote(c.Value))
		}
	}
	return nil
}
