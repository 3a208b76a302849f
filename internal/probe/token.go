package probe

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned by token providers that hold no token for a
// user and workspace.
var ErrNoToken = errors.New("machine token not found")

// TokenProvider returns the machine token issued to a user for a workspace.
type TokenProvider interface {
	Token(userID, workspaceID string) (string, error)
}

// StaticTokenProvider serves tokens from a fixed table. The "*" workspace
// entry matches every workspace.
type StaticTokenProvider struct {
	tokens map[string]string
}

// NewStaticTokenProvider creates a provider returning token for every
// user and workspace. An empty token yields a provider that always fails.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	p := &StaticTokenProvider{tokens: make(map[string]string)}
	if token != "" {
		p.tokens["*"] = token
	}
	return p
}

// Set registers token for workspaceID.
func (p *StaticTokenProvider) Set(workspaceID, token string) {
	p.tokens[workspaceID] = token
}

// Token implements TokenProvider.
func (p *StaticTokenProvider) Token(userID, workspaceID string) (string, error) {
	if token, ok := p.tokens[workspaceID]; ok {
		return token, nil
	}
	if token, ok := p.tokens["*"]; ok {
		return token, nil
	}
	return "", fmt.Errorf("%w for user %s in workspace %s", ErrNoToken, userID, workspaceID)
}
