// Package venv detects and activates Python virtual environments the way
// their bundled activate scripts do.
package venv

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/brandonbloom/launch/internal/envutil"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const cfgName = "pyvenv.cfg"

var (
	// ErrNotFound indicates the environment directory does not exist.
	ErrNotFound = errors.New("environment directory not found")
	// ErrMalformed indicates a directory exists but is not a usable environment.
	ErrMalformed = errors.New("not a valid virtual environment")
)

// Env is a virtual environment discovered on disk.
type Env struct {
	Dir    string
	BinDir string

	// Values read from pyvenv.cfg; empty when the file is absent.
	Prompt  string
	Version string
	Home    string
}

func binDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

func activateScript() string {
	if runtime.GOOS == "windows" {
		return "activate.bat"
	}
	return "activate"
}

// Detect inspects dir on fsys. dir should be absolute.
func Detect(fsys afero.Fs, dir string) (*Env, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, ErrMalformed)
	}

	env := &Env{
		Dir:    dir,
		BinDir: filepath.Join(dir, binDirName()),
	}
	if !isDir(fsys, env.BinDir) {
		return nil, fmt.Errorf("%s: missing %s/: %w", dir, binDirName(), ErrMalformed)
	}

	cfgPath := filepath.Join(dir, cfgName)
	hasCfg := exists(fsys, cfgPath)
	hasActivate := exists(fsys, filepath.Join(env.BinDir, activateScript()))
	if !hasCfg && !hasActivate {
		return nil, fmt.Errorf("%s: neither %s nor %s/%s present: %w", dir, cfgName, binDirName(), activateScript(), ErrMalformed)
	}
	if hasCfg {
		if err := env.readConfig(fsys, cfgPath); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Find returns the first of candidates (relative to root) that exists.
// A nil Env with a nil error means no candidate is present.
func Find(fsys afero.Fs, root string, candidates []string) (*Env, error) {
	for _, name := range candidates {
		dir := name
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, name)
		}
		env, err := Detect(fsys, dir)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return env, err
	}
	return nil, nil
}

func (e *Env) readConfig(fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	cfg, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:         true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	sec := cfg.Section(ini.DefaultSection)
	e.Prompt = sec.Key("prompt").String()
	e.Home = sec.Key("home").String()
	for _, key := range []string{"version", "version_info"} {
		if e.Version == "" {
			e.Version = sec.Key(key).String()
		}
	}
	return nil
}

// PromptName is the value activate exports as VIRTUAL_ENV_PROMPT.
func (e *Env) PromptName() string {
	if e.Prompt != "" {
		return e.Prompt
	}
	return filepath.Base(e.Dir)
}

// Activate returns env adjusted so that the environment's interpreter and
// packages shadow any system installation.
func (e *Env) Activate(env []string) []string {
	env = envutil.Without(env, "PYTHONHOME")
	env = envutil.With(env, "VIRTUAL_ENV", e.Dir)
	env = envutil.With(env, "VIRTUAL_ENV_PROMPT", e.PromptName())
	return envutil.PrependPath(env, e.BinDir)
}

func exists(fsys afero.Fs, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

func isDir(fsys afero.Fs, path string) bool {
	ok, err := afero.IsDir(fsys, path)
	return err == nil && ok
}
