package docscheck

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		want    Result
		blocked bool
	}{
		{"nothing changed", nil, Result{}, false},
		{"code only", []string{"src/app.ts", "main.go", "lib.rs"}, Result{CodeChanges: 3}, true},
		{"code and readme", []string{"src/app.tsx", "README.md"}, Result{CodeChanges: 1, DocChanges: 1}, false},
		{"code and docs dir", []string{"x.py", "docs/setup.txt"}, Result{CodeChanges: 1, DocChanges: 1}, false},
		{"docs only", []string{"CLAUDE.md"}, Result{DocChanges: 1}, false},
		{"non code files", []string{"package.json", "styles.css", "Makefile"}, Result{}, false},
		{"both kinds at once", []string{"docs/example.go"}, Result{CodeChanges: 1, DocChanges: 1}, false},
		{"suffix must be at the end", []string{"notes.go.txt", "app.jsx.bak"}, Result{}, false},
		{"nested readme counts", []string{"pkg/a.js", "pkg/README.md"}, Result{CodeChanges: 1, DocChanges: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.files)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.blocked, got.Blocked())
		})
	}
}

type fakeLister struct {
	files []string
	err   error
}

func (f fakeLister) ChangedFiles(context.Context) ([]string, error) { return f.files, f.err }

func TestCheck(t *testing.T) {
	ctx := context.Background()

	var stderr bytes.Buffer
	assert.Equal(t, ExitBlocked, Check(ctx, fakeLister{files: []string{"a.go"}}, &stderr))
	assert.Contains(t, stderr.String(), "no documentation updated")

	stderr.Reset()
	assert.Equal(t, ExitOK, Check(ctx, fakeLister{files: []string{"a.go", "README.md"}}, &stderr))
	assert.Empty(t, stderr.String())

	assert.Equal(t, ExitOK, Check(ctx, fakeLister{err: errors.New("not a git repository")}, &stderr))
	assert.Empty(t, stderr.String())
}

func TestGit_ChangedFiles(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	// Not a repository yet: the gate passes.
	_, err := Git{Dir: dir}.ChangedFiles(context.Background())
	assert.Error(t, err)
	assert.Equal(t, ExitOK, Check(context.Background(), Git{Dir: dir}, &bytes.Buffer{}))

	git("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	git("add", ".")
	git("commit", "-q", "-m", "init")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0644))

	files, err := Git{Dir: dir}.ChangedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, files)
	assert.Equal(t, ExitBlocked, Check(context.Background(), Git{Dir: dir}, &bytes.Buffer{}))
}
