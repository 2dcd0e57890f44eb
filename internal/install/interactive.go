package install

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user a yes/no question. It is the installer's only
// blocking call.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// TerminalPrompter reads answers line by line.
type TerminalPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewTerminalPrompter returns a prompter reading from r and writing the
// question to w.
func NewTerminalPrompter(r io.Reader, w io.Writer) *TerminalPrompter {
	return &TerminalPrompter{reader: bufio.NewReader(r), writer: w}
}

// Confirm prints question with a [S/n] hint and reads one line.
// Input closed before any answer counts as a decline.
func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.writer, "  %s [S/n] ", question)

	line, err := p.reader.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			fmt.Fprintln(p.writer)
			return false, nil
		}
	} else if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	return IsAffirmative(line), nil
}

// IsAffirmative reports whether answer accepts a prompt: an empty answer,
// or one starting with "y" or "s" (sim), in any case.
func IsAffirmative(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "" || strings.HasPrefix(a, "y") || strings.HasPrefix(a, "s")
}

// AutoConfirm answers every prompt with its own value, for --yes and tests.
type AutoConfirm bool

func (a AutoConfirm) Confirm(string) (bool, error) { return bool(a), nil }
