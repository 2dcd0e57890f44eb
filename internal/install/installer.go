// Package install drives the install/upgrade flow for a target project.
//
// The flow is a small state machine:
//
//	marker absent, .claude absent  -> Uninitialized -> full install -> Installed
//	marker absent, .claude present -> ForeignDirectoryPresent -> confirm
//	                                  -> Installed | Cancelled
//	marker == version              -> UpToDate (no writes)
//	marker != version              -> NeedsUpgrade -> confirm -> back up
//	                                  CLAUDE.md -> full install -> Installed
//	                                  | Cancelled
//
// Result.Launch tells the caller whether to hand the terminal to the
// assistant afterwards. A declined overwrite of a foreign directory does
// not launch; a declined upgrade still does, since a working install is in
// place.
package install

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"reverendo/internal/detect"
	"reverendo/internal/logging"
	"reverendo/internal/reconcile"
	"reverendo/internal/render"
	"reverendo/internal/templates"
	"reverendo/internal/ui"
)

// Installer provisions one target directory.
type Installer struct {
	Root      string
	Version   string
	Templates fs.FS
	Prompter  Prompter
	Out       io.Writer
	GOOS      string
	// HomeDir locates the global assistant configuration for the Windows
	// fix-up; empty disables it.
	HomeDir string
	// ExtraServers are added to the default servers in .mcp.json.
	ExtraServers map[string]reconcile.Server
}

// Result is the outcome of Run.
type Result struct {
	From             State // assessed starting state
	State            State // Installed, UpToDate or Cancelled
	InstalledVersion string
	Launch           bool
}

// New returns an installer for root wired to the terminal and the bundled
// templates.
func New(root, version string) *Installer {
	home, _ := os.UserHomeDir()
	return &Installer{
		Root:      root,
		Version:   version,
		Templates: templates.FS(),
		Prompter:  NewTerminalPrompter(os.Stdin, os.Stdout),
		Out:       os.Stdout,
		GOOS:      runtime.GOOS,
		HomeDir:   home,
	}
}

// Run assesses the target and performs whatever the state calls for.
func (in *Installer) Run() (Result, error) {
	timer := logging.StartTimer(logging.CategoryInstall, "Run")
	defer timer.StopWithThreshold(5 * time.Second)

	a, err := Assess(in.Root, in.Version)
	if err != nil {
		return Result{}, err
	}
	logging.Install("assessed %s as %s (marker=%q)", in.Root, a.State, a.InstalledVersion)
	res := Result{From: a.State, InstalledVersion: a.InstalledVersion}

	switch a.State {
	case UpToDate:
		in.printf("\n  %s Reverendo %s already installed.\n\n", ui.Green("✓"), ui.Dim(in.Version))
		res.State = UpToDate
		res.Launch = true
		return res, nil

	case NeedsUpgrade:
		in.printf("\n  %s\n\n", ui.Banner("Reverendo ")+ui.Dim(a.InstalledVersion)+" → "+ui.Green(in.Version))
		ok, err := in.Prompter.Confirm("Update?")
		if err != nil {
			return Result{}, err
		}
		// The existing install keeps working either way.
		res.Launch = true
		if !ok {
			in.printf("\n  Cancelled.\n\n")
			res.State = Cancelled
			return res, nil
		}
		if err := in.backupManifest(); err != nil {
			return Result{}, err
		}

	case ForeignDirectoryPresent:
		in.printf("\n  %s .claude/ found (not created by Reverendo)\n", ui.Yellow("!"))
		ok, err := in.Prompter.Confirm("Overwrite?")
		if err != nil {
			return Result{}, err
		}
		if !ok {
			in.printf("\n  Cancelled.\n\n")
			res.State = Cancelled
			return res, nil
		}
	}

	if err := in.fullInstall(); err != nil {
		return Result{}, err
	}
	res.State = Installed
	res.Launch = true
	return res, nil
}

// backupManifest copies CLAUDE.md to CLAUDE.md.backup before an upgrade
// rewrites it. A previous backup is overwritten.
func (in *Installer) backupManifest() error {
	src := filepath.Join(in.Root, ManifestFile)
	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", ManifestFile, err)
	}
	if err := os.WriteFile(src+reconcile.BackupSuffix, data, 0644); err != nil {
		return fmt.Errorf("backing up %s: %w", ManifestFile, err)
	}
	in.printf("\n  %s %s saved to %s\n", ui.Yellow("!"), ManifestFile, ManifestFile+reconcile.BackupSuffix)
	return nil
}

// fullInstall writes every artifact. The version marker goes last so an
// interrupted install is re-run rather than reported up to date.
func (in *Installer) fullInstall() error {
	in.printf("\n  Installing Reverendo...\n\n")

	managed := filepath.Join(in.Root, ManagedDir)
	if err := os.MkdirAll(managed, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", ManagedDir, err)
	}

	if err := in.copyFile(templates.SettingsFile, filepath.Join(managed, templates.SettingsFile)); err != nil {
		return err
	}
	for _, dir := range templates.ManagedDirs {
		if err := in.copyTree(dir, filepath.Join(managed, dir)); err != nil {
			return err
		}
	}

	if err := in.writeManifest(); err != nil {
		return err
	}
	if err := in.reconcileServers(); err != nil {
		return err
	}

	if err := os.WriteFile(MarkerPath(in.Root), []byte(in.Version), 0644); err != nil {
		return fmt.Errorf("writing version marker: %w", err)
	}

	if in.GOOS == "windows" {
		if err := in.globalFixup(); err != nil {
			return err
		}
	}

	in.printf("\n  %s Done!\n\n", ui.Green("✅"))
	return nil
}

// copyFile copies one template file to dst.
func (in *Installer) copyFile(name, dst string) error {
	data, err := fs.ReadFile(in.Templates, name)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", name, err)
	}
	mode := fileMode(name)
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	// WriteFile leaves the mode of an existing file alone.
	if err := os.Chmod(dst, mode); err != nil {
		return fmt.Errorf("setting mode of %s: %w", dst, err)
	}
	in.progress(dst, "")
	return nil
}

// copyTree copies the template directory dir to dst, recursively.
func (in *Installer) copyTree(dir, dst string) error {
	return fs.WalkDir(in.Templates, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("reading templates: %w", err)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, dir), "/")
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			return nil
		}
		return in.copyFile(p, target)
	})
}

// fileMode keeps hook scripts executable.
func fileMode(name string) os.FileMode {
	if path.Ext(name) == ".sh" {
		return 0755
	}
	return 0644
}

func (in *Installer) writeManifest() error {
	tmpl, err := templates.Manifest(in.Templates)
	if err != nil {
		return err
	}
	profile := detect.Detect(in.Root)
	dst := filepath.Join(in.Root, ManifestFile)
	if err := os.WriteFile(dst, []byte(render.Render(profile, tmpl)), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", ManifestFile, err)
	}
	in.progress(dst, "")
	return nil
}

func (in *Installer) reconcileServers() error {
	dst := filepath.Join(in.Root, ServersFile)
	d, err := reconcile.Plan(dst, templates.Desired(in.GOOS, in.ExtraServers))
	if err != nil {
		return err
	}
	if err := reconcile.Apply(d); err != nil {
		return err
	}
	switch d.Kind {
	case reconcile.Merge:
		in.progress(dst, "(merged)")
	case reconcile.BackupAndReplace:
		in.progress(dst, "(backup created)")
	default:
		in.progress(dst, "")
	}
	return nil
}

// globalFixup offers to wrap bare npx servers in the user's global
// configuration. Unreadable or unparseable files are skipped silently.
func (in *Installer) globalFixup() error {
	if in.HomeDir == "" {
		return nil
	}
	fix := reconcile.PlanGlobalFixup(filepath.Join(in.HomeDir, GlobalConfigFile))
	if fix == nil {
		return nil
	}
	in.printf("\n  %s ~/%s has servers calling npx directly: %s\n",
		ui.Yellow("!"), GlobalConfigFile, strings.Join(fix.Servers, ", "))
	ok, err := in.Prompter.Confirm("Wrap them with cmd /c?")
	if err != nil {
		return err
	}
	if !ok {
		logging.InstallDebug("global fix-up declined")
		return nil
	}
	if err := fix.Apply(); err != nil {
		return err
	}
	in.printf("%s\n", ui.Check("~/"+GlobalConfigFile, "(backup created)"))
	return nil
}

// progress prints a completed artifact relative to the target root.
func (in *Installer) progress(dst, note string) {
	rel, err := filepath.Rel(in.Root, dst)
	if err != nil {
		rel = dst
	}
	in.printf("%s\n", ui.Check(filepath.ToSlash(rel), note))
}

func (in *Installer) printf(format string, args ...interface{}) {
	if in.Out == nil {
		return
	}
	fmt.Fprintf(in.Out, format, args...)
}
