package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known definition properties.
const (
	PropertyProbeKind  = "probe.kind"
	PropertyServerPort = "server.port"
)

// Definition describes an installable agent.
type Definition struct {
	ID           string            `yaml:"id" json:"id"`
	Version      string            `yaml:"version,omitempty" json:"version,omitempty"`
	Name         string            `yaml:"name,omitempty" json:"name,omitempty"`
	Script       string            `yaml:"script,omitempty" json:"script,omitempty"`
	Dependencies []string          `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Properties   map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Key returns the definition's key; an empty version maps to LatestVersion.
func (d Definition) Key() Key {
	return NewKey(d.ID, d.Version)
}

// Property returns a property value or def when unset.
func (d Definition) Property(name, def string) string {
	if v, ok := d.Properties[name]; ok && v != "" {
		return v
	}
	return def
}

// DisplayName returns Name, falling back to the id.
func (d Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

func (d Definition) describe() string {
	return fmt.Sprintf("%s (%s)", d.DisplayName(), d.Key())
}

// descriptorExtensions lists the file types LoadDefinitions reads.
var descriptorExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// LoadDefinitions reads one agent definition per descriptor file in dir.
// Files are read in lexical order so the resulting catalog order is stable.
func LoadDefinitions(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if descriptorExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read agent descriptor %s: %w", path, err)
		}

		// yaml.v3 accepts JSON documents as well.
		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("failed to parse agent descriptor %s: %w", path, err)
		}
		if def.ID == "" {
			return nil, fmt.Errorf("%w: %s has no id", ErrInvalidDefinition, path)
		}
		defs = append(defs, def)
	}

	return defs, nil
}
