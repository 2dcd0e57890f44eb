package reconcile

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ServersKey is the top-level key holding tool-server descriptors.
const ServersKey = "mcpServers"

// Server is one tool-server connection descriptor.
type Server struct {
	Type    string            `json:"type" yaml:"type"`
	Command string            `json:"command" yaml:"command"`
	Args    []string          `json:"args" yaml:"args"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// NPXServer returns a stdio server launched through npx. Windows needs the
// command interpreter in front of npx; every other platform runs it directly.
func NPXServer(goos string, args ...string) Server {
	if goos == "windows" {
		return Server{
			Type:    "stdio",
			Command: "cmd",
			Args:    append([]string{"/c", "npx"}, args...),
		}
	}
	return Server{
		Type:    "stdio",
		Command: "npx",
		Args:    append([]string{}, args...),
	}
}

// Desired is the installer-managed set of servers, kept in insertion order.
type Desired struct {
	servers *orderedmap.OrderedMap[string, Server]
}

// NewDesired returns an empty desired configuration.
func NewDesired() *Desired {
	return &Desired{servers: orderedmap.New[string, Server]()}
}

// Set adds or replaces a server. A missing type defaults to stdio.
func (d *Desired) Set(name string, s Server) {
	if s.Type == "" {
		s.Type = "stdio"
	}
	if s.Args == nil {
		s.Args = []string{}
	}
	d.servers.Set(name, s)
}

// Get returns the server registered under name.
func (d *Desired) Get(name string) (Server, bool) {
	return d.servers.Get(name)
}

// Len returns the number of servers.
func (d *Desired) Len() int { return d.servers.Len() }

// Names returns the server names in insertion order.
func (d *Desired) Names() []string {
	names := make([]string, 0, d.servers.Len())
	for pair := d.servers.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Marshal renders the desired configuration as a complete document.
func (d *Desired) Marshal() ([]byte, error) {
	doc := orderedmap.New[string, *orderedmap.OrderedMap[string, Server]]()
	doc.Set(ServersKey, d.servers)
	return encode(doc)
}

// encode writes v as two-space indented JSON followed by a newline.
func encode(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding server configuration: %w", err)
	}
	return append(data, '\n'), nil
}
