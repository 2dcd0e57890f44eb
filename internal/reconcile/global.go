package reconcile

import (
	"encoding/json"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"reverendo/internal/logging"
)

// GlobalFixup is a pending rewrite of the user's global assistant
// configuration, wrapping bare npx servers in cmd /c for Windows.
type GlobalFixup struct {
	Path       string
	BackupPath string
	Servers    []string // names of the rewritten servers, in file order
	Original   []byte
	Content    []byte
}

// PlanGlobalFixup inspects the global configuration at path. It returns nil
// when there is nothing to rewrite; a missing, unreadable or unparseable
// file also yields nil since the fix-up is best-effort.
func PlanGlobalFixup(path string) *GlobalFixup {
	original, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	content, names, ok := WrapDirectNPX(original)
	if !ok || len(names) == 0 {
		return nil
	}
	return &GlobalFixup{
		Path:       path,
		BackupPath: path + BackupSuffix,
		Servers:    names,
		Original:   original,
		Content:    content,
	}
}

// Apply backs up the original file, then writes the rewritten one.
func (g *GlobalFixup) Apply() error {
	if err := os.WriteFile(g.BackupPath, g.Original, 0644); err != nil {
		return fmt.Errorf("backing up %s: %w", g.Path, err)
	}
	if err := os.WriteFile(g.Path, g.Content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", g.Path, err)
	}
	logging.Reconcile("wrapped %d global servers in %s", len(g.Servers), g.Path)
	return nil
}

// WrapDirectNPX rewrites every top-level server whose command is "npx" to
// {"command": "cmd", "args": ["/c", "npx", ...]}. Other fields of each entry
// and other keys of the document are preserved. ok is false when data is
// not a JSON object.
func WrapDirectNPX(data []byte) (out []byte, wrapped []string, ok bool) {
	doc, err := parseObject(data)
	if err != nil {
		return nil, nil, false
	}
	raw, present := doc.Get(ServersKey)
	if !present {
		return nil, nil, true
	}
	servers, err := parseObject(raw)
	if err != nil {
		return nil, nil, true
	}

	for pair := servers.Oldest(); pair != nil; pair = pair.Next() {
		entry, err := parseObject(pair.Value)
		if err != nil {
			continue
		}
		rewritten, changed := wrapEntry(entry)
		if !changed {
			continue
		}
		value, err := json.Marshal(rewritten)
		if err != nil {
			return nil, nil, false
		}
		pair.Value = value
		wrapped = append(wrapped, pair.Key)
	}
	if len(wrapped) == 0 {
		return nil, nil, true
	}

	encoded, err := json.Marshal(servers)
	if err != nil {
		return nil, nil, false
	}
	doc.Set(ServersKey, encoded)
	out, err = encode(doc)
	if err != nil {
		return nil, nil, false
	}
	return out, wrapped, true
}

func wrapEntry(entry *orderedmap.OrderedMap[string, json.RawMessage]) (*orderedmap.OrderedMap[string, json.RawMessage], bool) {
	rawCmd, ok := entry.Get("command")
	if !ok {
		return entry, false
	}
	var command string
	if err := json.Unmarshal(rawCmd, &command); err != nil || command != "npx" {
		return entry, false
	}

	var args []string
	if rawArgs, ok := entry.Get("args"); ok {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return entry, false
		}
	}

	wrapped := NPXServer("windows", args...)
	cmdJSON, _ := json.Marshal(wrapped.Command)
	argsJSON, _ := json.Marshal(wrapped.Args)
	entry.Set("command", cmdJSON)
	entry.Set("args", argsJSON)
	return entry, true
}
