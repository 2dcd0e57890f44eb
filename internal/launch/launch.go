// Package launch hands the terminal to the assistant once installation is
// done. The child shares the installer's stdio and is not supervised.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"reverendo/internal/logging"
)

const (
	DefaultBinary      = "claude"
	DefaultInstallHint = "npm install -g @anthropic-ai/claude-code"
)

// ErrAssistantNotFound is returned when the assistant executable is not on
// PATH.
var ErrAssistantNotFound = errors.New("assistant executable not found")

// Assistant describes the process to start.
type Assistant struct {
	Binary string
	Args   []string
	Dir    string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an assistant started in dir with the caller's stdio.
func New(binary string, args []string, dir string) Assistant {
	if binary == "" {
		binary = DefaultBinary
	}
	return Assistant{
		Binary: binary,
		Args:   args,
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the assistant and blocks until it exits. A non-zero exit is
// returned as the *exec.ExitError from os/exec.
func (a Assistant) Run(ctx context.Context) error {
	path, err := exec.LookPath(a.Binary)
	if err != nil {
		logging.LaunchWarn("%s not on PATH: %v", a.Binary, err)
		return fmt.Errorf("%w: %s", ErrAssistantNotFound, a.Binary)
	}

	cmd := exec.CommandContext(ctx, path, a.Args...)
	cmd.Dir = a.Dir
	cmd.Stdin = a.Stdin
	cmd.Stdout = a.Stdout
	cmd.Stderr = a.Stderr

	logging.Launch("starting %s %v in %s", path, a.Args, a.Dir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", a.Binary, err)
	}
	return nil
}
