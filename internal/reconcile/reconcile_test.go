package reconcile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode unmarshals a document for semantic comparison.
func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func desiredOf(servers map[string]Server, order ...string) *Desired {
	d := NewDesired()
	for _, name := range order {
		d.Set(name, servers[name])
	}
	return d
}

func defaultDesired() *Desired {
	d := NewDesired()
	d.Set("context7", NPXServer("linux", "-y", "@upstash/context7-mcp"))
	d.Set("playwright", NPXServer("linux", "-y", "@playwright/mcp@latest"))
	return d
}

func TestPlan_CreateWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")

	d, err := Plan(path, defaultDesired())
	require.NoError(t, err)

	assert.Equal(t, Create, d.Kind)
	assert.Empty(t, d.BackupPath)
	want := `{
  "mcpServers": {
    "context7": {
      "type": "stdio",
      "command": "npx",
      "args": [
        "-y",
        "@upstash/context7-mcp"
      ]
    },
    "playwright": {
      "type": "stdio",
      "command": "npx",
      "args": [
        "-y",
        "@playwright/mcp@latest"
      ]
    }
  }
}
`
	assert.Equal(t, want, string(d.Content))

	require.NoError(t, Apply(d))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestPlan_MergePreservesForeignEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")
	existing := `{
  "version": 2,
  "mcpServers": {
    "github": {"command": "gh-mcp", "args": [], "env": {"TOKEN": "x"}},
    "context7": {"command": "old", "args": ["stale"]}
  },
  "inputs": [{"id": "token"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	d, err := Plan(path, defaultDesired())
	require.NoError(t, err)
	require.Equal(t, Merge, d.Kind)

	got := decode(t, d.Content)
	assert.EqualValues(t, 2, got["version"])
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "token"}}, got["inputs"])

	servers := got["mcpServers"].(map[string]interface{})
	assert.Len(t, servers, 3)
	assert.Equal(t, map[string]interface{}{
		"command": "gh-mcp", "args": []interface{}{}, "env": map[string]interface{}{"TOKEN": "x"},
	}, servers["github"])
	assert.Equal(t, "npx", servers["context7"].(map[string]interface{})["command"])
	assert.Contains(t, servers, "playwright")
}

func TestMergeDocument_KeepsKeyOrder(t *testing.T) {
	existing := []byte(`{"zeta": 1, "mcpServers": {"b": {"command": "b"}, "a": {"command": "a"}}, "alpha": true}`)
	d := NewDesired()
	d.Set("a", Server{Command: "new-a"})
	d.Set("c", Server{Command: "c"})

	out, err := MergeDocument(existing, d)
	require.NoError(t, err)

	want := `{
  "zeta": 1,
  "mcpServers": {
    "b": {
      "command": "b"
    },
    "a": {
      "type": "stdio",
      "command": "new-a",
      "args": []
    },
    "c": {
      "type": "stdio",
      "command": "c",
      "args": []
    }
  },
  "alpha": true
}
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("MergeDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDocument_SupersetProperty(t *testing.T) {
	cases := []struct {
		name     string
		existing string
		desired  map[string]Server
	}{
		{"disjoint", `{"mcpServers": {"x": {"command": "x"}, "y": {"command": "y"}}}`,
			map[string]Server{"z": {Command: "z"}}},
		{"overlap", `{"mcpServers": {"x": {"command": "x"}, "y": {"command": "y"}}}`,
			map[string]Server{"x": {Command: "x2", Args: []string{"1"}}, "z": {Command: "z"}}},
		{"no servers key", `{"other": "kept"}`,
			map[string]Server{"a": {Command: "a"}}},
		{"servers not an object", `{"mcpServers": 5}`,
			map[string]Server{"a": {Command: "a"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			names := make([]string, 0, len(tc.desired))
			for n := range tc.desired {
				names = append(names, n)
			}
			d := desiredOf(tc.desired, names...)

			out, err := MergeDocument([]byte(tc.existing), d)
			require.NoError(t, err)

			before := decode(t, []byte(tc.existing))
			after := decode(t, out)

			// Every top-level key survives.
			for k := range before {
				assert.Contains(t, after, k)
			}

			result := after[ServersKey].(map[string]interface{})
			if old, ok := before[ServersKey].(map[string]interface{}); ok {
				for k, v := range old {
					if _, overridden := tc.desired[k]; !overridden {
						assert.Equal(t, v, result[k], "entry %s dropped or altered", k)
					}
				}
			}
			for k := range tc.desired {
				want, _ := d.Get(k)
				wantJSON, _ := json.Marshal(want)
				assert.Equal(t, decode(t, wantJSON), result[k])
			}
		})
	}
}

func TestMergeDocument_EmptyDesiredIsIdentity(t *testing.T) {
	docs := []string{
		`{"mcpServers": {"a": {"command": "a", "args": ["x"]}}, "extra": {"nested": [1, 2]}}`,
		`{"only": "top-level"}`,
		`{}`,
		`{"mcpServers": {}}`,
	}
	for _, doc := range docs {
		out, err := MergeDocument([]byte(doc), NewDesired())
		require.NoError(t, err)
		if diff := cmp.Diff(decode(t, []byte(doc)), decode(t, out)); diff != "" {
			t.Errorf("identity merge of %s changed document:\n%s", doc, diff)
		}
	}
}

func TestPlan_BackupAndReplaceMalformed(t *testing.T) {
	for _, original := range []string{
		`{"mcpServers": {`,
		`not json at all`,
		`["an", "array"]`,
		`null`,
		``,
	} {
		t.Run(original, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".mcp.json")
			require.NoError(t, os.WriteFile(path, []byte(original), 0644))
			desired := defaultDesired()

			d, err := Plan(path, desired)
			require.NoError(t, err)
			require.Equal(t, BackupAndReplace, d.Kind)
			assert.Equal(t, path+".backup", d.BackupPath)

			require.NoError(t, Apply(d))

			backup, err := os.ReadFile(path + ".backup")
			require.NoError(t, err)
			assert.Equal(t, []byte(original), backup)

			fresh, err := desired.Marshal()
			require.NoError(t, err)
			written, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, fresh, written)
		})
	}
}

func TestApply_MostRecentBackupWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")
	require.NoError(t, os.WriteFile(path+".backup", []byte("older backup"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	d, err := Plan(path, defaultDesired())
	require.NoError(t, err)
	require.NoError(t, Apply(d))

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(backup))
}

func TestPlan_RerunIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")

	first, err := Plan(path, defaultDesired())
	require.NoError(t, err)
	require.NoError(t, Apply(first))

	second, err := Plan(path, defaultDesired())
	require.NoError(t, err)
	assert.Equal(t, Merge, second.Kind)
	assert.Equal(t, string(first.Content), string(second.Content))
}

func TestPlan_ReadErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be cannot be read as a file.
	path := filepath.Join(dir, ".mcp.json")
	require.NoError(t, os.Mkdir(path, 0755))

	_, err := Plan(path, defaultDesired())
	assert.Error(t, err)
}

func TestNPXServer(t *testing.T) {
	assert.Equal(t, Server{Type: "stdio", Command: "npx", Args: []string{"-y", "pkg"}},
		NPXServer("darwin", "-y", "pkg"))
	assert.Equal(t, Server{Type: "stdio", Command: "cmd", Args: []string{"/c", "npx", "-y", "pkg"}},
		NPXServer("windows", "-y", "pkg"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "create", Create.String())
	assert.Equal(t, "merge", Merge.String())
	assert.Equal(t, "backup-and-replace", BackupAndReplace.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestDesiredNames(t *testing.T) {
	d := NewDesired()
	d.Set("b", Server{Command: "b"})
	d.Set("a", Server{Command: "a"})
	d.Set("b", Server{Command: "b2"})
	assert.Equal(t, []string{"b", "a"}, d.Names())
	s, ok := d.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b2", s.Command)
	assert.Equal(t, "stdio", s.Type)
}
