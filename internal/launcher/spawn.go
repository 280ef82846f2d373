package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"

	"go.uber.org/zap"
)

// spawn runs the plan as a child process, relaying signals until it exits,
// and returns the child's status.
func (l *Launcher) spawn(ctx context.Context, plan *Plan) (int, error) {
	cmd := exec.Command(plan.Interpreter)
	cmd.Args = plan.Argv
	cmd.Env = plan.Env
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("start %s: %w", plan.Interpreter, err)
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fail(ExitTargetNotFound, err)
		}
		return 0, fail(ExitNotExecutable, err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, forwardedSignals...)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigs:
				l.Logger.Debug("forwarding signal", zap.String("signal", sig.String()))
				_ = cmd.Process.Signal(sig)
			case <-ctx.Done():
				_ = cmd.Process.Kill()
				return
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	close(done)
	if err == nil {
		return 0, nil
	}
	code, sig := childStatus(err)
	if sig != "" {
		l.Logger.Debug("target terminated by signal", zap.String("signal", sig), zap.Int("status", code))
	} else {
		l.Logger.Debug("target exited", zap.Int("status", code))
	}
	return code, nil
}
