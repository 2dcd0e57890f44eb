// Package render personalizes the bundled CLAUDE.md template with a detected
// project profile. Substitution is literal and replaces only the first
// occurrence of each placeholder; the template is expected to carry every
// placeholder exactly once. Values are inserted unescaped.
package render

import (
	"strings"

	"reverendo/internal/detect"
	"reverendo/internal/logging"
)

// Placeholders as they appear in the bundled template.
const (
	TitlePlaceholder       = "# [Project Name]"
	DescriptionPlaceholder = "[Brief project description]"
)

// stackRow is the literal table row for one stack field.
func stackRow(label, key string) string {
	return "| " + label + " | [" + key + "] |"
}

type replacement struct {
	old string
	new string
}

// Render returns tmpl with the profile's values substituted.
func Render(p detect.ProjectProfile, tmpl string) string {
	out := strings.Replace(tmpl, TitlePlaceholder, "# "+p.Name, 1)

	if p.Description != "" {
		out = strings.Replace(out, DescriptionPlaceholder, p.Description, 1)
	}

	for _, r := range replacements(p) {
		if !strings.Contains(out, r.old) {
			logging.Get(logging.CategoryRender).Debug("placeholder %q not found in template", r.old)
			continue
		}
		out = strings.Replace(out, r.old, r.new, 1)
	}
	return out
}

// replacements lists the stack rows then the commands, in template order.
// Stack rows are always replaced, leaving a blank cell for undetected fields.
func replacements(p detect.ProjectProfile) []replacement {
	defaults := detect.DefaultCommands
	return []replacement{
		{stackRow("Framework", "framework"), "| Framework | " + p.Stack.Framework + " |"},
		{stackRow("Language", "language"), "| Language | " + p.Stack.Language + " |"},
		{stackRow("Database", "database"), "| Database | " + p.Stack.Database + " |"},
		{stackRow("Styling", "styling"), "| Styling | " + p.Stack.Styling + " |"},
		{stackRow("Runtime", "runtime"), "| Runtime | " + p.Stack.Runtime + " |"},
		{defaults.Dev, p.Commands.Dev},
		{defaults.Build, p.Commands.Build},
		{defaults.Test, p.Commands.Test},
		{defaults.Lint, p.Commands.Lint},
	}
}
