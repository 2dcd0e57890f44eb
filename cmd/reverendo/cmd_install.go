package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"github.com/spf13/cobra"

	"reverendo/internal/install"
	"reverendo/internal/launch"
	"reverendo/internal/logging"
	"reverendo/internal/ui"
)

// runInstall runs the install/upgrade flow, then hands off to the assistant.
func runInstall(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	in := install.New(ws, version)
	in.Out = cmd.OutOrStdout()
	in.ExtraServers = cfg.Servers
	if assumeYes {
		in.Prompter = install.AutoConfirm(true)
	} else {
		in.Prompter = install.NewTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	res, err := in.Run()
	if err != nil {
		return err
	}
	if !res.Launch || noLaunch || !cfg.Launch {
		logging.Launch("not launching (state=%s, no-launch=%v, config launch=%v)", res.State, noLaunch, cfg.Launch)
		return nil
	}
	return startAssistant(cmd, ws)
}

// startAssistant gives the terminal to the assistant. Interrupts go to the
// child; the installer only waits for it to exit.
func startAssistant(cmd *cobra.Command, ws string) error {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s Starting Claude Code...\n\n", ui.Cyan("🚀"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	a := launch.New(cfg.Assistant.Binary, cfg.Assistant.Args, ws)
	a.Stdin = cmd.InOrStdin()
	a.Stdout = cmd.OutOrStdout()
	a.Stderr = cmd.ErrOrStderr()

	err := a.Run(cmd.Context())
	if errors.Is(err, launch.ErrAssistantNotFound) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n  %s Claude Code (%s) not found. Install it with:\n\n    %s\n\n",
			ui.Red("✗"), cfg.Assistant.Binary, cfg.Assistant.InstallHint)
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logging.Launch("assistant exited with status %d", exitErr.ExitCode())
		return nil
	}
	return err
}
