// Package state records agent launch outcomes between runs.
// It tracks a content hash of each launched definition so callers can tell
// when an agent was started from a definition that has since changed.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tuannvm/agentboot/internal/agent"
)

// LaunchesFile is the store's file name inside the state directory.
const LaunchesFile = "launches.json"

// Launches is the persisted store content.
type Launches struct {
	// Agents maps agent keys ("id:version") to their latest launch
	Agents map[string]Record `json:"agents"`
}

// Record is the outcome of one agent launch.
type Record struct {
	AttemptID   string    `json:"attempt_id"`
	Agent       string    `json:"agent"`
	WorkspaceID string    `json:"workspace_id"`
	MachineID   string    `json:"machine_id"`
	State       string    `json:"state"`
	Probes      int       `json:"probes"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`

	// DefinitionHash is the hash of the definition the agent was started from
	DefinitionHash string `json:"definition_hash"`
}

// Manager handles launch record operations. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	path     string
	launches *Launches
}

// NewManager creates a manager for the store in stateDir.
func NewManager(stateDir string) *Manager {
	return &Manager{
		path:     filepath.Join(stateDir, LaunchesFile),
		launches: &Launches{Agents: make(map[string]Record)},
	}
}

// Path returns the store file location.
func (m *Manager) Path() string {
	return m.path
}

// Load loads the records from disk. A missing file is an empty store.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.launches = &Launches{Agents: make(map[string]Record)}
			return nil
		}
		return fmt.Errorf("failed to read launch records: %w", err)
	}

	var launches Launches
	if err := json.Unmarshal(data, &launches); err != nil {
		return fmt.Errorf("failed to parse launch records: %w", err)
	}
	if launches.Agents == nil {
		launches.Agents = make(map[string]Record)
	}
	m.launches = &launches
	return nil
}

// Record stores r as the latest launch of its agent and persists the store.
func (m *Manager) Record(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.launches.Agents[r.Agent] = r
	return m.save()
}

func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(m.launches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal launch records: %w", err)
	}

	// Write through a temp file so a crash never leaves a truncated store.
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write launch records: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to write launch records: %w", err)
	}
	return nil
}

// Get returns the latest record for key.
func (m *Manager) Get(key agent.Key) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.launches.Agents[key.String()]
	return r, ok
}

// Records returns every record ordered by agent key.
func (m *Manager) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]Record, 0, len(m.launches.Agents))
	for _, r := range m.launches.Agents {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Agent < records[j].Agent })
	return records
}

// Stale reports whether def differs from the definition its latest launch
// used, with a reason.
func (m *Manager) Stale(def agent.Definition) (bool, string) {
	r, ok := m.Get(def.Key())
	if !ok {
		return true, "never launched"
	}
	if r.DefinitionHash != HashDefinition(def) {
		return true, "definition changed since last launch"
	}
	return false, "up-to-date"
}

// Clear removes all records.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.launches = &Launches{Agents: make(map[string]Record)}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HashDefinition returns a content hash of the fields that affect how an
// agent is started.
func HashDefinition(def agent.Definition) string {
	keys := make([]string, 0, len(def.Properties))
	for k := range def.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0}) // separator
	}

	write(def.Key().String())
	write(def.Script)
	for _, dep := range def.Dependencies {
		write(dep)
	}
	for _, k := range keys {
		write(k + "=" + def.Properties[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}
