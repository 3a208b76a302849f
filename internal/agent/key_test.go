package agent

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Key
		wantErr bool
	}{
		{"id with version", "id:1", Key{ID: "id", Version: "1"}, false},
		{"id without version", "id", Key{ID: "id", Version: LatestVersion}, false},
		{"dotted id", "org.eclipse.che.terminal:1.0.0", Key{ID: "org.eclipse.che.terminal", Version: "1.0.0"}, false},
		{"two colons", "id:1:2", Key{}, true},
		{"empty version", "id:", Key{}, true},
		{"empty id", ":1", Key{}, true},
		{"empty string", "", Key{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedKey), "error should be ErrMalformedKey: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeyTooManyColonsMessage(t *testing.T) {
	_, err := ParseKey("id:1:2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one ':'")
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "id:1", Key{ID: "id", Version: "1"}.String())
	assert.Equal(t, "id:latest", NewKey("id", "").String())

	for _, raw := range []string{"id:1", "a.b.c:2.0"} {
		k, err := ParseKey(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, k.String())
	}
}

func TestKeyCompact(t *testing.T) {
	assert.Equal(t, "id", NewKey("id", "").Compact())
	assert.Equal(t, "id:2", NewKey("id", "2").Compact())
}

func TestKeyEquality(t *testing.T) {
	seen := map[Key]bool{NewKey("id", ""): true}
	assert.True(t, seen[Key{ID: "id", Version: LatestVersion}])
	assert.False(t, seen[Key{ID: "id", Version: "1"}])
}

func TestKeyJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Key{"k": NewKey("org.eclipse.che.exec", "")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"org.eclipse.che.exec:latest"}`, string(data))

	var decoded map[string]Key
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, NewKey("org.eclipse.che.exec", LatestVersion), decoded["k"])

	var bad Key
	assert.ErrorIs(t, json.Unmarshal([]byte(`"a:b:c"`), &bad), ErrMalformedKey)
}
