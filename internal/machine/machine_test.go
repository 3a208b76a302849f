package machine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineServer(t *testing.T) {
	m := Machine{
		ID:          "dev",
		WorkspaceID: "ws1",
		Runtime: Runtime{Servers: map[string]Server{
			"4401/tcp": {URL: "http://localhost:4401/api"},
		}},
	}

	s, ok := m.Server("4401/tcp")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:4401/api", s.URL)

	_, ok = m.Server("4411/tcp")
	assert.False(t, ok)

	_, ok = Machine{}.Server("4401/tcp")
	assert.False(t, ok)
}

func TestOutputChannel(t *testing.T) {
	assert.Equal(t, "workspace:ws1:CheWsAgent:output", OutputChannel("ws1", "CheWsAgent"))
}

func TestLocalExecutorRejectsEmptyCommand(t *testing.T) {
	e := NewLocalExecutor(LocalExecutorConfig{})
	defer func() { _ = e.Close(context.Background()) }()

	err := e.Exec(context.Background(), "ws", "m", Command{Name: "empty", CommandLine: "  "}, "chan")
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Empty(t, e.Output("chan"))
}

func TestLocalExecutorCancelledContext(t *testing.T) {
	e := NewLocalExecutor(LocalExecutorConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Exec(ctx, "ws", "m", Command{Name: "noop", CommandLine: "true"}, "chan")
	assert.ErrorIs(t, err, context.Canceled)
}
