// Package templates carries the bundled files written into a target
// project: the managed .claude/ tree, the CLAUDE.md template and the
// default tool servers.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"reverendo/internal/reconcile"
)

// assets holds the bundled template tree.
//
//go:embed assets
var assets embed.FS

// Paths inside the template tree.
const (
	ManifestTemplate = "claude.md"
	SettingsFile     = "settings.json"
	CommandsDir      = "commands"
	AgentsDir        = "agents"
	HooksDir         = "hooks"
)

// ManagedDirs are copied recursively into .claude/, in install order.
var ManagedDirs = []string{CommandsDir, AgentsDir, HooksDir}

// FS returns the bundled template tree rooted at its top directory.
func FS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}

// Manifest reads the CLAUDE.md template from fsys.
func Manifest(fsys fs.FS) (string, error) {
	data, err := fs.ReadFile(fsys, ManifestTemplate)
	if err != nil {
		return "", fmt.Errorf("reading manifest template: %w", err)
	}
	return string(data), nil
}

// ServerPackage names a default tool server and the npm package it runs.
type ServerPackage struct {
	Name    string
	Package string
}

// DefaultServers are written to every project's .mcp.json.
var DefaultServers = []ServerPackage{
	{Name: "context7", Package: "@upstash/context7-mcp"},
	{Name: "sequential-thinking", Package: "@modelcontextprotocol/server-sequential-thinking"},
	{Name: "playwright", Package: "@playwright/mcp@latest"},
}

// Desired builds the managed server set for goos. Extra servers (from the
// user config) are added after the defaults in name order and win on a
// name collision.
func Desired(goos string, extra map[string]reconcile.Server) *reconcile.Desired {
	d := reconcile.NewDesired()
	for _, s := range DefaultServers {
		d.Set(s.Name, reconcile.NPXServer(goos, "-y", s.Package))
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Set(name, extra[name])
	}
	return d
}
