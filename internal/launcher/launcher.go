// Package launcher prepares the Python environment next to the launcher
// binary and hands the process over to the entry point.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/brandonbloom/launch/internal/config"
	"github.com/brandonbloom/launch/internal/envutil"
	"github.com/brandonbloom/launch/internal/layout"
	"github.com/brandonbloom/launch/internal/logging"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Exit statuses reported when the target never started. They follow the
// shell's conventions so callers can tell a misconfigured launcher apart
// from a target that ran and failed.
const (
	ExitConfig         = 125
	ExitNotExecutable  = 126
	ExitTargetNotFound = 127
)

// ErrInterpreterNotFound indicates no interpreter candidate resolved on PATH.
var ErrInterpreterNotFound = errors.New("interpreter not found")

// Error carries the exit status chosen where a launch failed.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func fail(code int, err error) error {
	return &Error{Code: code, Err: err}
}

// ExitCode maps an error returned by Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ExitConfig
}

// Plan is a fully resolved invocation.
type Plan struct {
	Layout      *layout.Layout
	Interpreter string
	Argv        []string
	Env         []string
}

// Launcher runs the resolve, activate, exec pipeline.
type Launcher struct {
	Fs     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *zap.Logger
}

// New returns a Launcher bound to the real filesystem and stdio.
func New() *Launcher {
	return &Launcher{
		Fs:     afero.NewOsFs(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: zap.NewNop(),
	}
}

// Main runs the launcher and returns the status the process should exit with.
// In replace mode a successful launch never returns.
func Main(args []string) int {
	l := New()
	code, err := l.Run(context.Background(), args)
	if err != nil {
		printDiagnostic(l.Stderr, err)
		_ = l.Logger.Sync()
		return ExitCode(err)
	}
	_ = l.Logger.Sync()
	return code
}

// Run resolves the layout and starts the target with args appended verbatim.
// The returned status is only meaningful in spawn mode.
func (l *Launcher) Run(ctx context.Context, args []string) (int, error) {
	lay, err := withTraceRegion(ctx, "resolve", func() (*layout.Layout, error) {
		return layout.Discover(l.Fs)
	})
	if err != nil {
		return 0, fail(ExitConfig, err)
	}

	if err := l.configureLogger(lay.Config); err != nil {
		return 0, fail(ExitConfig, err)
	}
	l.Logger.Debug("resolved launcher root",
		zap.String("root", lay.Root),
		zap.String("entry_point", lay.EntryPoint),
		zap.String("mode", lay.Config.Exec.Mode),
	)

	plan, err := withTraceRegion(ctx, "prepare", func() (*Plan, error) {
		return l.Prepare(lay, args)
	})
	if err != nil {
		return 0, err
	}
	l.Logger.Debug("starting target",
		zap.String("interpreter", plan.Interpreter),
		zap.Int("args", len(args)),
	)

	if lay.Config.Exec.Mode == config.ModeSpawn || !canReplace {
		return l.spawn(ctx, plan)
	}
	_ = l.Logger.Sync()
	return 0, execReplace(plan)
}

// configureLogger builds the logger from cfg. An unparseable LevelEnv
// override is ignored in favor of the configured level.
func (l *Launcher) configureLogger(cfg config.Config) error {
	level := cfg.Log.Level
	if override := os.Getenv(logging.LevelEnv); override != "" && logging.ValidLevel(override) {
		level = override
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return err
	}
	l.Logger = logger
	return nil
}

// Prepare loads env files, activates the environment, and locates the entry
// point and interpreter. The activated environment is written into the
// current process so interpreter lookup sees the isolated PATH first.
func (l *Launcher) Prepare(lay *layout.Layout, args []string) (*Plan, error) {
	before := os.Environ()
	env, err := ActivatedEnv(lay, before)
	if err != nil {
		return nil, fail(ExitConfig, err)
	}
	if lay.Env != nil {
		l.Logger.Debug("activated environment",
			zap.String("dir", lay.Env.Dir),
			zap.String("version", lay.Env.Version),
		)
	}
	if err := envutil.Apply(envutil.Diff(before, env)); err != nil {
		return nil, fail(ExitConfig, err)
	}

	if err := lay.CheckEntryPoint(l.Fs); err != nil {
		return nil, fail(ExitTargetNotFound, err)
	}

	interp, err := LayoutInterpreter(lay)
	if err != nil {
		return nil, fail(ExitTargetNotFound, err)
	}

	argv := make([]string, 0, len(args)+2)
	argv = append(argv, interp, lay.EntryPoint)
	argv = append(argv, args...)

	return &Plan{
		Layout:      lay,
		Interpreter: interp,
		Argv:        argv,
		Env:         os.Environ(),
	}, nil
}

// LayoutInterpreter picks the interpreter for lay. With an environment,
// every candidate is tried inside its bin directory before PATH is searched.
func LayoutInterpreter(lay *layout.Layout) (string, error) {
	if lay.Env != nil {
		for _, name := range lay.Config.Interpreters {
			if strings.ContainsRune(name, filepath.Separator) {
				continue
			}
			if path, err := exec.LookPath(filepath.Join(lay.Env.BinDir, name)); err == nil {
				return path, nil
			}
		}
	}
	return FindInterpreter(lay.Root, lay.Config.Interpreters)
}

// FindInterpreter returns the absolute path of the first candidate found on
// the current PATH. Candidates containing a separator resolve against root.
func FindInterpreter(root string, candidates []string) (string, error) {
	for _, name := range candidates {
		if strings.ContainsRune(name, filepath.Separator) && !filepath.IsAbs(name) {
			name = filepath.Join(root, name)
		}
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	return "", fmt.Errorf("%w: tried %s on PATH", ErrInterpreterNotFound, strings.Join(candidates, ", "))
}

// ActivatedEnv returns environ with the layout's env files and environment
// applied, without touching the current process.
func ActivatedEnv(lay *layout.Layout, environ []string) ([]string, error) {
	env, err := envutil.LoadFiles(environ, lay.Root, lay.Config.Env.Files)
	if err != nil {
		return nil, err
	}
	if lay.Env != nil {
		env = lay.Env.Activate(env)
	}
	return env, nil
}
