package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandonbloom/launch/internal/config"
	"github.com/brandonbloom/launch/internal/venv"
	"github.com/spf13/afero"
)

// RootEnv overrides the launcher directory when set.
const RootEnv = "LAUNCH_ROOT"

// ErrEntryPointMissing indicates the configured entry point is not a regular file.
var ErrEntryPointMissing = errors.New("entry point not found")

// Layout is the launcher directory and everything discovered under it.
type Layout struct {
	Root       string
	ConfigPath string
	Config     config.Config
	EntryPoint string
	// Env is nil when no environment directory is present.
	Env *venv.Env
}

// Discover locates the launcher directory, honoring LAUNCH_ROOT, and loads it.
func Discover(fsys afero.Fs) (*Layout, error) {
	root, err := DiscoverRoot()
	if err != nil {
		return nil, err
	}
	return Load(fsys, root)
}

// DiscoverRoot reports the launcher directory without loading anything.
func DiscoverRoot() (string, error) {
	if root := os.Getenv(RootEnv); root != "" {
		return canonicalDir(root)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return Resolve(exe)
}

// Resolve returns the absolute, symlink-free directory containing the file
// at path. Every link in the chain is followed before taking the directory,
// so a symlinked launcher resolves to its real home.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return filepath.Dir(resolved), nil
}

func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return resolved, nil
}

// Load constructs a Layout from a known root directory.
func Load(fsys afero.Fs, root string) (*Layout, error) {
	cfgPath := filepath.Join(root, config.FileName)
	cfg, err := config.Load(fsys, cfgPath)
	if err != nil {
		return nil, err
	}

	env, err := venv.Find(fsys, root, cfg.Env.Dirs)
	if err != nil {
		return nil, err
	}

	entry := cfg.EntryPoint
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(root, entry)
	}

	return &Layout{
		Root:       root,
		ConfigPath: cfgPath,
		Config:     cfg,
		EntryPoint: entry,
		Env:        env,
	}, nil
}

// CheckEntryPoint reports ErrEntryPointMissing unless the entry point is a
// regular file.
func (l *Layout) CheckEntryPoint(fsys afero.Fs) error {
	info, err := fsys.Stat(l.EntryPoint)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrEntryPointMissing, l.EntryPoint)
	}
	return nil
}
