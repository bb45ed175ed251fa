// Package exec runs the external collaborators (sensor reader, ipmitool)
// and captures their output.
package exec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"codeberg.org/mutker/ipmifanctl/internal/errors"
	"github.com/google/shlex"
)

const (
	ErrEmptyCommand = errors.ErrorCode("exec_empty_command")
	ErrSplitCommand = errors.ErrorCode("exec_split_command_failed")
	ErrRunCommand   = errors.ErrorCode("exec_run_failed")
)

func init() {
	errors.RegisterMessage(ErrEmptyCommand, "Empty command")
	errors.RegisterMessage(ErrSplitCommand, "Failed to parse command")
	errors.RegisterMessage(ErrRunCommand, "Command failed")
}

// Runner executes a program with arguments and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// CommandRunner runs programs with os/exec.
type CommandRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() *CommandRunner {
	return &CommandRunner{}
}

func (*CommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	errFactory := errors.New()

	cmd := exec.CommandContext(ctx, name, args...)
	// If Env is nil, the new process uses the current process's environment.
	cmd.Env = os.Environ()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return "", errFactory.WithData(ErrRunCommand, struct {
			Command string
			Error   string
			Stderr  string
		}{
			Command: strings.Join(append([]string{name}, args...), " "),
			Error:   err.Error(),
			Stderr:  strings.TrimSpace(stderr.String()),
		})
	}

	return strings.TrimSuffix(stdout.String(), "\n"), nil
}

// Split parses a configured command line into program and arguments,
// honouring shell quoting, e.g. `ipmitool -I lanplus -H bmc -P 'a b'`.
func Split(cmdString string) (string, []string, error) {
	errFactory := errors.New()

	fields, err := shlex.Split(cmdString)
	if err != nil {
		return "", nil, errFactory.Wrap(ErrSplitCommand, err)
	}
	if len(fields) == 0 {
		return "", nil, errFactory.WithData(ErrEmptyCommand, cmdString)
	}

	return fields[0], fields[1:], nil
}
