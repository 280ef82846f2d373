package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/brandonbloom/launch/internal/config"
	"github.com/spf13/cobra"
)

type initOptions struct {
	entry  string
	envDir string
	force  bool
}

func newInitCommand(root *rootOptions) *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a launch.toml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.entry, "entry", "", "entry point relative to the launcher directory")
	cmd.Flags().StringVar(&opts.envDir, "env-dir", "", "environment directory to look for instead of venv/.venv")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing launch.toml")
	return cmd
}

func runInit(cmd *cobra.Command, root *rootOptions, opts *initOptions) error {
	dir, err := resolveRoot(root)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists; pass --force to overwrite", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg := config.Default()
	if opts.entry != "" {
		cfg.EntryPoint = opts.entry
	}
	if opts.envDir != "" {
		cfg.Env.Dirs = []string{opts.envDir}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
