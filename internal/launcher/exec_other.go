//go:build !unix

package launcher

import (
	"errors"
	"os"
	"os/exec"
)

// Without exec(2) every launch runs the target as a child.
const canReplace = false

var forwardedSignals = []os.Signal{os.Interrupt}

func execReplace(*Plan) error {
	return errors.New("process replacement unsupported on this platform")
}

func childStatus(err error) (int, string) {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), ""
	}
	return ExitNotExecutable, ""
}
