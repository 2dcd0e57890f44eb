package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths relative to the target project root.
const (
	ManagedDir   = ".claude"
	MarkerFile   = ".reverendo-version"
	ManifestFile = "CLAUDE.md"
	ServersFile  = ".mcp.json"

	// GlobalConfigFile lives in the user's home directory.
	GlobalConfigFile = ".claude.json"
)

// State is where a target directory stands relative to this installer.
type State int

const (
	Uninitialized State = iota
	UpToDate
	NeedsUpgrade
	ForeignDirectoryPresent
	Installed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case UpToDate:
		return "up-to-date"
	case NeedsUpgrade:
		return "needs-upgrade"
	case ForeignDirectoryPresent:
		return "foreign-directory-present"
	case Installed:
		return "installed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Assessment is the starting state of a target directory.
type Assessment struct {
	State State
	// InstalledVersion is the trimmed marker content; empty without a marker.
	InstalledVersion string
}

// MarkerPath returns the version marker path under root.
func MarkerPath(root string) string {
	return filepath.Join(root, ManagedDir, MarkerFile)
}

// Assess classifies root against version. The version marker is the only
// authority: without it an existing managed directory is foreign.
func Assess(root, version string) (Assessment, error) {
	data, err := os.ReadFile(MarkerPath(root))
	switch {
	case err == nil:
		installed := strings.TrimSpace(string(data))
		if installed == version {
			return Assessment{State: UpToDate, InstalledVersion: installed}, nil
		}
		return Assessment{State: NeedsUpgrade, InstalledVersion: installed}, nil
	case !errors.Is(err, os.ErrNotExist):
		return Assessment{}, fmt.Errorf("reading version marker: %w", err)
	}

	if _, err := os.Stat(filepath.Join(root, ManagedDir)); err == nil {
		return Assessment{State: ForeignDirectoryPresent}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Assessment{}, fmt.Errorf("checking %s: %w", ManagedDir, err)
	}
	return Assessment{State: Uninitialized}, nil
}
