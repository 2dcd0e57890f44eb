package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reverendo/internal/detect"
	"reverendo/internal/diff"
	"reverendo/internal/install"
	"reverendo/internal/render"
	"reverendo/internal/templates"
	"reverendo/internal/ui"
)

var (
	detectJSON  bool
	previewRaw  bool
	previewDiff bool
)

// detectCmd prints what the installer would detect, without writing.
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print the detected project profile",
	Args:  cobra.NoArgs,
	RunE:  runDetect,
}

// previewCmd renders CLAUDE.md for the project, without writing.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the CLAUDE.md that would be generated",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print JSON instead of YAML")
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "Print markdown source without terminal rendering")
	previewCmd.Flags().BoolVar(&previewDiff, "diff", false, "Show changes against the existing CLAUDE.md")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	profile := detect.Detect(ws)

	var out []byte
	if detectJSON {
		out, err = json.MarshalIndent(profile, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yaml.Marshal(profile)
	}
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runPreview(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	tmpl, err := templates.Manifest(templates.FS())
	if err != nil {
		return err
	}
	md := render.Render(detect.Detect(ws), tmpl)

	if previewDiff {
		return printManifestDiff(cmd, ws, md)
	}
	if previewRaw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	out, err := ui.RenderMarkdown(md, 0)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// printManifestDiff prints a colored unified diff from the current
// CLAUDE.md (empty when absent) to the rendered one.
func printManifestDiff(cmd *cobra.Command, ws, rendered string) error {
	current, err := os.ReadFile(filepath.Join(ws, install.ManifestFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", install.ManifestFile, err)
	}

	out := diff.Unified(install.ManifestFile, install.ManifestFile+" (rendered)", string(current), rendered, diff.DefaultContext)
	if out == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date.\n", install.ManifestFile)
		return nil
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = ui.Bold(line)
		case strings.HasPrefix(line, "@@"):
			line = ui.Cyan(line)
		case strings.HasPrefix(line, "+"):
			line = ui.Green(line)
		case strings.HasPrefix(line, "-"):
			line = ui.Red(line)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
