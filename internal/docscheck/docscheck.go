// Package docscheck implements the documentation gate run as an assistant
// hook: if source files changed since HEAD and no documentation did, the
// assistant is told to update the docs before stopping.
package docscheck

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"reverendo/internal/logging"
)

// Exit codes understood by the assistant's hook runner.
const (
	ExitOK      = 0
	ExitBlocked = 2
)

var (
	codePattern = regexp.MustCompile(`\.(ts|tsx|js|jsx|py|go|rs)$`)
	docsPattern = regexp.MustCompile(`(CLAUDE\.md|README\.md|docs/)`)
)

// Result counts changed files by kind.
type Result struct {
	CodeChanges int
	DocChanges  int
}

// Blocked reports code changes without any documentation change.
func (r Result) Blocked() bool {
	return r.CodeChanges > 0 && r.DocChanges == 0
}

// Evaluate classifies changed paths. A path may count as both code and
// documentation (docs/example.go).
func Evaluate(files []string) Result {
	var r Result
	for _, f := range files {
		if codePattern.MatchString(f) {
			r.CodeChanges++
		}
		if docsPattern.MatchString(f) {
			r.DocChanges++
		}
	}
	return r
}

// ChangeLister reports the paths changed in a working tree.
type ChangeLister interface {
	ChangedFiles(ctx context.Context) ([]string, error)
}

// Git lists changes against HEAD with the git CLI.
type Git struct {
	Dir string
}

func (g Git) ChangedFiles(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", "HEAD")
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}
	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Check runs the gate and returns the process exit code. Any failure to
// list changes (no git, not a repository, no commits) passes the gate.
func Check(ctx context.Context, lister ChangeLister, stderr io.Writer) int {
	files, err := lister.ChangedFiles(ctx)
	if err != nil {
		logging.Get(logging.CategoryDocs).Debug("skipping docs check: %v", err)
		return ExitOK
	}

	r := Evaluate(files)
	logging.Get(logging.CategoryDocs).Info("%d code and %d doc changes", r.CodeChanges, r.DocChanges)
	if !r.Blocked() {
		return ExitOK
	}
	fmt.Fprintln(stderr, "Code changed but no documentation updated.")
	fmt.Fprintln(stderr, "Run rev-documenter agent or update docs manually.")
	return ExitBlocked
}
