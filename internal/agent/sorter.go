package agent

// Sorter orders agents so that every dependency precedes its dependents.
type Sorter struct {
	registry *Registry
}

// NewSorter creates a sorter backed by the given registry.
func NewSorter(registry *Registry) *Sorter {
	return &Sorter{registry: registry}
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

// sortRun holds the per-call traversal state.
type sortRun struct {
	registry *Registry
	state    map[string]visitState
	defs     map[string]Definition
	stack    []string
	result   []Key
}

// Sort resolves ids at their latest version and returns them in dependency
// order. Dependencies that were not requested are pulled in transitively.
// Siblings keep their first-encountered order, so the result is deterministic
// for a given input and dependency declaration order.
func (s *Sorter) Sort(ids []string) ([]Key, error) {
	run := &sortRun{
		registry: s.registry,
		state:    make(map[string]visitState),
		defs:     make(map[string]Definition),
	}

	// Requested ids must all resolve before any ordering happens.
	for _, id := range ids {
		if _, err := run.resolve(id); err != nil {
			return nil, err
		}
	}

	for _, id := range ids {
		if err := run.visit(id); err != nil {
			return nil, err
		}
	}

	return run.result, nil
}

// Levels groups the sorted agents by dependency depth.
// Level 0: agents with no dependencies
// Level N: agents whose dependencies all sit in levels 0..N-1
// Agents within a level can be launched in parallel.
func (s *Sorter) Levels(ids []string) ([][]Key, error) {
	sorted, err := s.Sort(ids)
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(sorted))
	var levels [][]Key
	for _, key := range sorted {
		def, err := s.registry.Get(key)
		if err != nil {
			return nil, err
		}

		level := 0
		for _, dep := range def.Dependencies {
			if d, ok := depth[dep]; ok && d+1 > level {
				level = d + 1
			}
		}
		depth[key.ID] = level

		for len(levels) <= level {
			levels = append(levels, nil)
		}
		levels[level] = append(levels[level], key)
	}

	return levels, nil
}

// Dependencies returns the transitive dependencies of id in dependency
// order, excluding id itself.
func (s *Sorter) Dependencies(id string) ([]Key, error) {
	sorted, err := s.Sort([]string{id})
	if err != nil {
		return nil, err
	}
	return sorted[:len(sorted)-1], nil
}

func (r *sortRun) resolve(id string) (Definition, error) {
	if def, ok := r.defs[id]; ok {
		return def, nil
	}
	def, err := r.registry.Get(NewKey(id, LatestVersion))
	if err != nil {
		return Definition{}, err
	}
	r.defs[id] = def
	return def, nil
}

func (r *sortRun) visit(id string) error {
	switch r.state[id] {
	case done:
		return nil
	case visiting:
		return r.cycle(id)
	}

	def, err := r.resolve(id)
	if err != nil {
		return err
	}

	r.state[id] = visiting
	r.stack = append(r.stack, id)

	for _, dep := range def.Dependencies {
		if err := r.visit(dep); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.state[id] = done
	r.result = append(r.result, def.Key())
	return nil
}

// cycle builds the error for a back edge to id, listing the stack from the
// first occurrence of id.
func (r *sortRun) cycle(id string) error {
	start := 0
	for i, onStack := range r.stack {
		if onStack == id {
			start = i
			break
		}
	}

	path := make([]string, 0, len(r.stack)-start+1)
	path = append(path, r.stack[start:]...)
	path = append(path, id)
	return &CycleError{Path: path}
}
