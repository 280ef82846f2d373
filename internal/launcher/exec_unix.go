//go:build unix

package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

const canReplace = true

// forwardedSignals are relayed to the child in spawn mode.
var forwardedSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGTERM,
	unix.SIGHUP,
	unix.SIGQUIT,
	unix.SIGUSR1,
	unix.SIGUSR2,
	unix.SIGWINCH,
}

// execReplace swaps the process image for the plan's interpreter. It only
// returns on failure.
func execReplace(plan *Plan) error {
	err := unix.Exec(plan.Interpreter, plan.Argv, plan.Env)
	err = fmt.Errorf("exec %s: %w", plan.Interpreter, err)
	if errors.Is(err, unix.ENOENT) {
		return fail(ExitTargetNotFound, err)
	}
	return fail(ExitNotExecutable, err)
}

// childStatus reports the status a shell would show for the finished child:
// its exit code, or 128+N when it was killed by signal N.
func childStatus(err error) (int, string) {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return ExitNotExecutable, ""
	}
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), describeSignal(ws.Signal())
	}
	return ee.ExitCode(), ""
}

func describeSignal(sig syscall.Signal) string {
	name := unix.SignalName(sig)
	if name == "" {
		return fmt.Sprintf("signal %d", sig)
	}
	return fmt.Sprintf("%s (%d)", name, sig)
}
