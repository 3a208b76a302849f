// Package agent provides the agent catalog and dependency ordering used to
// bootstrap a workspace's development machine.
package agent

import (
	"fmt"
	"strings"
)

// LatestVersion is the version assumed when a key omits one.
const LatestVersion = "latest"

// Key identifies an agent definition by id and version.
type Key struct {
	ID      string
	Version string
}

// NewKey creates a key, defaulting an empty version to LatestVersion.
func NewKey(id, version string) Key {
	if version == "" {
		version = LatestVersion
	}
	return Key{ID: id, Version: version}
}

// ParseKey parses "id" or "id:version".
func ParseKey(raw string) (Key, error) {
	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 1:
		if raw == "" {
			return Key{}, fmt.Errorf("%w: empty agent id", ErrMalformedKey)
		}
		return Key{ID: raw, Version: LatestVersion}, nil
	case 2:
		if parts[0] == "" {
			return Key{}, fmt.Errorf("%w: empty agent id in %q", ErrMalformedKey, raw)
		}
		if parts[1] == "" {
			return Key{}, fmt.Errorf("%w: empty agent version in %q", ErrMalformedKey, raw)
		}
		return Key{ID: parts[0], Version: parts[1]}, nil
	default:
		return Key{}, fmt.Errorf("%w: more than one ':' in agent key %q", ErrMalformedKey, raw)
	}
}

// String returns "id:version".
func (k Key) String() string {
	return k.ID + ":" + k.Version
}

// Compact returns the id alone for latest keys, "id:version" otherwise.
func (k Key) Compact() string {
	if k.Version == LatestVersion || k.Version == "" {
		return k.ID
	}
	return k.String()
}

// MarshalText encodes the key as "id:version".
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a key written by MarshalText.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
