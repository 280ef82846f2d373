package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/brandonbloom/launch/internal/envutil"
	"github.com/brandonbloom/launch/internal/launcher"
	"github.com/brandonbloom/launch/internal/layout"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newDoctorCommand(opts *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the launcher directory and Python environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, opts, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show passing checks too")
	return cmd
}

type doctorContext struct {
	Fs          afero.Fs
	Root        string
	Layout      *layout.Layout
	System      string
	Interpreter string
}

// errWarning marks a check result that is reported but does not fail doctor.
type errWarning struct{ msg string }

func (w errWarning) Error() string { return w.msg }

type doctorCheck struct {
	Name string
	Fn   func(*doctorContext) (string, error)
}

var (
	doctorPass = color.New(color.FgGreen, color.Bold)
	doctorFail = color.New(color.FgRed, color.Bold)
	doctorWarn = color.New(color.FgYellow, color.Bold)
)

func runDoctor(cmd *cobra.Command, opts *rootOptions, verbose bool) error {
	ctx := &doctorContext{Fs: afero.NewOsFs()}
	checks := []doctorCheck{
		{Name: "launcher root", Fn: func(c *doctorContext) (string, error) {
			root, err := resolveRoot(opts)
			if err != nil {
				return "", err
			}
			c.Root = root
			return root, nil
		}},
		{Name: "config and environment", Fn: checkLayout},
		{Name: "entry point", Fn: checkEntryPoint},
		{Name: "interpreter", Fn: checkInterpreter},
		{Name: "python version", Fn: checkPythonVersion},
	}

	width := 0
	for _, check := range checks {
		width = max(width, runewidth.StringWidth(check.Name))
	}

	out := cmd.OutOrStdout()
	setColor(isTerminal(out), doctorPass, doctorFail, doctorWarn)

	var failures []string
	for _, check := range checks {
		name := runewidth.FillRight(check.Name, width)
		detail, err := check.Fn(ctx)
		var warn errWarning
		switch {
		case errors.As(err, &warn):
			fmt.Fprintf(out, "%s %s  %s\n", doctorWarn.Sprint("!"), name, warn.msg)
		case err != nil:
			failures = append(failures, fmt.Sprintf("%s %s  %v", doctorFail.Sprint("✗"), name, err))
		case verbose:
			fmt.Fprintf(out, "%s %s  %s\n", doctorPass.Sprint("✓"), name, detail)
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), failure)
		}
		return fmt.Errorf("%d doctor checks failed", len(failures))
	}

	fmt.Fprintln(out, "healthy!")
	return nil
}

func setColor(enabled bool, colors ...*color.Color) {
	for _, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

var errSkipped = errors.New("skipped: earlier check failed")

func checkLayout(c *doctorContext) (string, error) {
	if c.Root == "" {
		return "", errSkipped
	}
	lay, err := layout.Load(c.Fs, c.Root)
	if err != nil {
		return "", err
	}
	c.Layout = lay
	if lay.Env == nil {
		return "no environment directory; using system interpreter", nil
	}
	return lay.Env.Dir, nil
}

func checkEntryPoint(c *doctorContext) (string, error) {
	if c.Layout == nil {
		return "", errSkipped
	}
	if err := c.Layout.CheckEntryPoint(c.Fs); err != nil {
		return "", err
	}
	return c.Layout.EntryPoint, nil
}

func checkInterpreter(c *doctorContext) (string, error) {
	if c.Layout == nil {
		return "", errSkipped
	}
	candidates := c.Layout.Config.Interpreters
	if system, err := launcher.FindInterpreter(c.Root, candidates); err == nil {
		c.System = system
	}

	before := os.Environ()
	env, err := launcher.ActivatedEnv(c.Layout, before)
	if err != nil {
		return "", err
	}
	if err := envutil.Apply(envutil.Diff(before, env)); err != nil {
		return "", err
	}
	interp, err := launcher.LayoutInterpreter(c.Layout)
	if err != nil {
		return "", err
	}
	c.Interpreter = interp
	return interp, nil
}

// checkPythonVersion compares the environment's recorded version with the
// interpreter the launcher would fall back to without it.
func checkPythonVersion(c *doctorContext) (string, error) {
	if c.Layout == nil || c.Layout.Env == nil {
		return "no environment to compare", nil
	}
	envVersion := c.Layout.Env.Version
	if envVersion == "" {
		return "environment does not record a version", nil
	}
	if c.System == "" || c.System == c.Interpreter {
		return envVersion, nil
	}
	sysVersion, err := pythonVersion(c.System)
	if err != nil {
		return "", errWarning{msg: fmt.Sprintf("environment has %s; %v", envVersion, err)}
	}
	if majorMinor(sysVersion) != majorMinor(envVersion) {
		return "", errWarning{msg: fmt.Sprintf("environment has Python %s but %s is %s", envVersion, c.System, sysVersion)}
	}
	return envVersion, nil
}

func pythonVersion(interp string) (string, error) {
	cmd := exec.Command(interp, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s --version: %w", interp, err)
	}
	fields := strings.Fields(out.String())
	if len(fields) < 2 {
		return "", fmt.Errorf("%s --version: unexpected output %q", interp, out.String())
	}
	return fields[1], nil
}

func majorMinor(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}
