package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reverendo/internal/docscheck"
)

// checkDocsCmd is called by the Stop hook installed in .claude/hooks.
var checkDocsCmd = &cobra.Command{
	Use:   "check-docs",
	Short: "Fail with exit status 2 when code changed without documentation",
	Long: `Compares the working tree against HEAD. If source files changed and no
documentation did (CLAUDE.md, README.md or docs/), prints a reminder and
exits with status 2 so Claude Code keeps working. Outside a git
repository the check passes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		if code := docscheck.Check(cmd.Context(), docscheck.Git{Dir: ws}, cmd.ErrOrStderr()); code != docscheck.ExitOK {
			return exitCodeError{code: code}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reverendo version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reverendo %s\n", version)
	},
}
