package cli

import (
	"path/filepath"

	"github.com/brandonbloom/launch/internal/layout"
	"github.com/spf13/afero"
)

func resolveRoot(opts *rootOptions) (string, error) {
	if opts.root != "" {
		abs, err := filepath.Abs(opts.root)
		if err != nil {
			return "", err
		}
		return filepath.EvalSymlinks(abs)
	}
	return layout.DiscoverRoot()
}

func loadLayout(opts *rootOptions) (*layout.Layout, error) {
	root, err := resolveRoot(opts)
	if err != nil {
		return nil, err
	}
	return layout.Load(afero.NewOsFs(), root)
}
