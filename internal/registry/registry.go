// Package registry loads the name-to-command mapping tasks are resolved against.
//
// Two sources are merged: the "scripts" object of a package.json manifest and
// the [tasks] table of .mrun.toml. Table entries win on name clashes.
package registry

import (
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"
)

// Registry maps task names to shell command strings.
type Registry map[string]string

// LoadManifest reads the "scripts" object from a package.json file.
// A missing file yields an empty registry.
func LoadManifest(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest extracts string-valued entries of the top-level "scripts" object.
func ParseManifest(data []byte) (Registry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("manifest is not valid JSON")
	}

	reg := Registry{}
	scripts := gjson.GetBytes(data, "scripts")
	if !scripts.Exists() {
		return reg, nil
	}
	if !scripts.IsObject() {
		return nil, fmt.Errorf("manifest scripts must be an object, got %s", scripts.Type)
	}

	scripts.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.String {
			reg[key.String()] = value.String()
		}
		return true
	})
	return reg, nil
}

// Merge returns a new registry with the entries of overrides layered over r.
func (r Registry) Merge(overrides map[string]string) Registry {
	merged := make(Registry, len(r)+len(overrides))
	for name, cmd := range r {
		merged[name] = cmd
	}
	for name, cmd := range overrides {
		merged[name] = cmd
	}
	return merged
}

// Names returns the task names in lexical order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
