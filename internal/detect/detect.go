// Package detect builds a best-effort ProjectProfile from a project's marker
// files (package.json, lockfiles, pyproject.toml, Cargo.toml, go.mod).
// Detection is read-only and never fails: unreadable or malformed files
// are treated as absent.
package detect

import (
	"encoding/json"
	"os"
	"path/filepath"

	"reverendo/internal/logging"
)

// PackageManager identifies the Node package manager in use.
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
	Bun  PackageManager = "bun"
)

// Stack holds one label per category; empty means undetected.
type Stack struct {
	Framework string `json:"framework" yaml:"framework"`
	Language  string `json:"language" yaml:"language"`
	Database  string `json:"database" yaml:"database"`
	Styling   string `json:"styling" yaml:"styling"`
	Runtime   string `json:"runtime" yaml:"runtime"`
}

// Commands are the shell invocations written into the project manifest.
type Commands struct {
	Dev   string `json:"dev" yaml:"dev"`
	Build string `json:"build" yaml:"build"`
	Test  string `json:"test" yaml:"test"`
	Lint  string `json:"lint" yaml:"lint"`
}

// DefaultCommands are used when nothing more specific is detected.
// They double as the placeholders in the bundled manifest template.
var DefaultCommands = Commands{
	Dev:   "npm run dev",
	Build: "npm run build",
	Test:  "npm test",
	Lint:  "npm run lint",
}

// ProjectProfile is the detected description of a target project.
type ProjectProfile struct {
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description" yaml:"description"`
	Stack          Stack          `json:"stack" yaml:"stack"`
	Commands       Commands       `json:"commands" yaml:"commands"`
	PackageManager PackageManager `json:"package_manager" yaml:"package_manager"`
}

// packageJSON is the subset of package.json the detector reads.
type packageJSON struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Detect inspects dir and returns its profile.
func Detect(dir string) ProjectProfile {
	timer := logging.StartTimer(logging.CategoryDetect, "Detect")
	defer timer.Stop()

	profile := ProjectProfile{
		Name:           filepath.Base(filepath.Clean(dir)),
		Commands:       DefaultCommands,
		PackageManager: NPM,
	}

	if pkg, ok := readPackageJSON(dir); ok {
		applyNode(&profile, dir, pkg)
	}

	for _, eco := range ecosystemOverrides {
		if !anyExists(dir, eco.markers) {
			continue
		}
		logging.DetectDebug("%s marker found, overriding %q", eco.language, profile.Stack.Language)
		profile.Stack.Language = eco.language
		profile.Stack.Runtime = eco.runtime
		profile.Commands = eco.commands
	}

	logging.Detect("detected %s: language=%q framework=%q pm=%s",
		profile.Name, profile.Stack.Language, profile.Stack.Framework, profile.PackageManager)
	return profile
}

// readPackageJSON loads package.json. Any read or parse failure reports
// ok=false so the Node branch is skipped as a whole.
func readPackageJSON(dir string) (packageJSON, bool) {
	var pkg packageJSON
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return pkg, false
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		logging.DetectDebug("package.json unparseable, skipping node detection: %v", err)
		return packageJSON{}, false
	}
	return pkg, true
}

func applyNode(profile *ProjectProfile, dir string, pkg packageJSON) {
	if pkg.Name != "" {
		profile.Name = pkg.Name
	}
	if pkg.Description != "" {
		profile.Description = pkg.Description
	}
	profile.Stack.Language = "TypeScript/JavaScript"
	profile.Stack.Runtime = "Node.js"

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name, v := range pkg.Dependencies {
		deps[name] = v
	}
	for name, v := range pkg.DevDependencies {
		deps[name] = v
	}

	profile.Stack.Framework = firstMatch(frameworkRules, deps)
	profile.Stack.Styling = firstMatch(stylingRules, deps)
	profile.Stack.Database = firstMatch(databaseRules, deps)
	profile.PackageManager = detectPackageManager(dir)

	pm := profile.PackageManager
	if _, ok := pkg.Scripts["dev"]; ok {
		profile.Commands.Dev = RunScript(pm, "dev")
	}
	if _, ok := pkg.Scripts["build"]; ok {
		profile.Commands.Build = RunScript(pm, "build")
	}
	if _, ok := pkg.Scripts["test"]; ok {
		profile.Commands.Test = RunScript(pm, "test")
	}
	if _, ok := pkg.Scripts["lint"]; ok {
		profile.Commands.Lint = RunScript(pm, "lint")
	}
}

func detectPackageManager(dir string) PackageManager {
	for _, lf := range lockfiles {
		if exists(filepath.Join(dir, lf.file)) {
			return lf.manager
		}
	}
	return NPM
}

// RunScript returns the shell invocation of a package.json script.
// npm needs "run"; the other managers accept the script name directly.
func RunScript(pm PackageManager, script string) string {
	if pm == NPM || pm == "" {
		return "npm run " + script
	}
	return string(pm) + " " + script
}

func anyExists(dir string, names []string) bool {
	for _, name := range names {
		if exists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
