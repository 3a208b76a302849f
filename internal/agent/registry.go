package agent

import "fmt"

// Registry is an immutable catalog of agent definitions. It is built once
// and safe for concurrent reads.
type Registry struct {
	defs     []Definition
	byKey    map[Key]int
	versions map[string][]string
}

// NewRegistry builds a registry, rejecting duplicate id/version pairs.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:     make([]Definition, 0, len(defs)),
		byKey:    make(map[Key]int, len(defs)),
		versions: make(map[string][]string),
	}

	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("%w: agent %q has no id", ErrInvalidDefinition, def.Name)
		}

		def = def.clone()
		def.Version = def.Key().Version
		key := def.Key()

		if idx, exists := r.byKey[key]; exists {
			return nil, &DuplicateError{First: r.defs[idx], Second: def}
		}

		r.byKey[key] = len(r.defs)
		r.defs = append(r.defs, def)
		r.versions[def.ID] = append(r.versions[def.ID], def.Version)
	}

	return r, nil
}

// Get returns the definition registered under key.
func (r *Registry) Get(key Key) (Definition, error) {
	key = NewKey(key.ID, key.Version)
	idx, ok := r.byKey[key]
	if !ok {
		return Definition{}, &NotFoundError{Key: key}
	}
	return r.defs[idx].clone(), nil
}

// Versions returns the versions registered under id in insertion order.
// An unknown id yields an empty slice.
func (r *Registry) Versions(id string) []string {
	versions := r.versions[id]
	out := make([]string, len(versions))
	copy(out, versions)
	return out
}

// Agents returns a snapshot of the catalog in insertion order.
func (r *Registry) Agents() []Definition {
	out := make([]Definition, len(r.defs))
	for i, def := range r.defs {
		out[i] = def.clone()
	}
	return out
}

// IDs returns the distinct agent ids in insertion order.
func (r *Registry) IDs() []string {
	seen := make(map[string]bool, len(r.defs))
	var ids []string
	for _, def := range r.defs {
		if !seen[def.ID] {
			seen[def.ID] = true
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// clone copies the slice and map fields so callers cannot mutate the catalog.
func (d Definition) clone() Definition {
	if d.Dependencies != nil {
		deps := make([]string, len(d.Dependencies))
		copy(deps, d.Dependencies)
		d.Dependencies = deps
	}
	if d.Properties != nil {
		props := make(map[string]string, len(d.Properties))
		for k, v := range d.Properties {
			props[k] = v
		}
		d.Properties = props
	}
	return d
}
