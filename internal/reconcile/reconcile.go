// Package reconcile merges the installer's desired tool-server configuration
// into an existing .mcp.json without losing anything the user put there.
//
// Reconciliation is split into Plan, which only reads, and Apply, which
// performs the single write step. A plan is one of three decisions:
//
//   - Create: no file yet; write the desired document verbatim.
//   - Merge: the file parses; desired servers overwrite same-named entries,
//     every other server and every other top-level key is carried through
//     in its original position.
//   - BackupAndReplace: the file does not parse; its bytes are copied to
//     <path>.backup and the desired document replaces it.
package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"reverendo/internal/logging"
)

// BackupSuffix is appended to a file's path to name its backup copy.
const BackupSuffix = ".backup"

// ErrMalformed reports a configuration document that is not a JSON object.
var ErrMalformed = errors.New("configuration is not a JSON object")

// Kind enumerates reconcile decisions.
type Kind int

const (
	Create Kind = iota
	Merge
	BackupAndReplace
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Merge:
		return "merge"
	case BackupAndReplace:
		return "backup-and-replace"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decision is a planned write of the server-configuration file.
type Decision struct {
	Kind       Kind
	Path       string
	Content    []byte // written to Path
	BackupPath string // BackupAndReplace only
	Original   []byte // BackupAndReplace only; copied to BackupPath
}

// Plan decides how desired is written to path. Read errors other than
// "does not exist" are returned; a malformed document is not an error.
func Plan(path string, desired *Desired) (Decision, error) {
	fresh, err := desired.Marshal()
	if err != nil {
		return Decision{}, err
	}

	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Decision{Kind: Create, Path: path, Content: fresh}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("reading %s: %w", path, err)
	}

	merged, err := MergeDocument(existing, desired)
	if errors.Is(err, ErrMalformed) {
		logging.ReconcileWarn("%s is not valid JSON, it will be backed up", path)
		return Decision{
			Kind:       BackupAndReplace,
			Path:       path,
			Content:    fresh,
			BackupPath: path + BackupSuffix,
			Original:   existing,
		}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	return Decision{Kind: Merge, Path: path, Content: merged}, nil
}

// Apply performs the decision. A backup always reflects the most recent
// malformed original; an older backup at the same path is overwritten.
func Apply(d Decision) error {
	if d.Kind == BackupAndReplace {
		if err := os.WriteFile(d.BackupPath, d.Original, 0644); err != nil {
			return fmt.Errorf("backing up %s: %w", d.Path, err)
		}
	}
	if err := os.WriteFile(d.Path, d.Content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", d.Path, err)
	}
	logging.Get(logging.CategoryReconcile).With("path", d.Path).Info("applied %s", d.Kind)
	return nil
}

// MergeDocument merges desired into the existing document and returns the
// encoded result. It returns ErrMalformed if existing is not a JSON object.
// A non-object mcpServers value is treated as empty.
func MergeDocument(existing []byte, desired *Desired) ([]byte, error) {
	doc, err := parseObject(existing)
	if err != nil {
		return nil, err
	}

	raw, hadServers := doc.Get(ServersKey)
	servers := orderedmap.New[string, json.RawMessage]()
	if hadServers {
		if parsed, err := parseObject(raw); err == nil {
			servers = parsed
		} else {
			logging.ReconcileDebug("%s is not an object, replacing it", ServersKey)
		}
	}

	if !hadServers && desired.Len() == 0 {
		return encode(doc)
	}

	for pair := desired.servers.Oldest(); pair != nil; pair = pair.Next() {
		value, err := json.Marshal(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding server %s: %w", pair.Key, err)
		}
		servers.Set(pair.Key, value)
	}

	encoded, err := json.Marshal(servers)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", ServersKey, err)
	}
	doc.Set(ServersKey, encoded)
	return encode(doc)
}

// parseObject decodes a JSON object preserving key order.
func parseObject(data []byte) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) || len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformed
	}
	obj := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(trimmed, obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return obj, nil
}
