// Package probe derives HTTP liveness probe targets for agent servers.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/tuannvm/agentboot/internal/machine"
)

// Fixed probe policy shared by every factory.
const (
	DefaultFailureThreshold    = 3
	DefaultTimeoutSeconds      = 10
	DefaultPeriodSeconds       = 10
	DefaultInitialDelaySeconds = 120
)

// ErrInfrastructure marks probe derivation failures.
var ErrInfrastructure = errors.New("internal infrastructure error")

// InfrastructureError reports a probe config that could not be derived.
type InfrastructureError struct {
	Message string
	Err     error
}

func (e *InfrastructureError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInfrastructure.
func (e *InfrastructureError) Is(target error) bool {
	return target == ErrInfrastructure
}

// Config is a concrete HTTP liveness probe target.
type Config struct {
	Host                string            `json:"host"`
	Port                int               `json:"port"`
	Scheme              string            `json:"scheme"`
	Path                string            `json:"path"`
	Headers             map[string]string `json:"headers,omitempty"`
	SuccessThreshold    int               `json:"success_threshold"`
	FailureThreshold    int               `json:"failure_threshold"`
	TimeoutSeconds      int               `json:"timeout_seconds"`
	PeriodSeconds       int               `json:"period_seconds"`
	InitialDelaySeconds int               `json:"initial_delay_seconds"`
}

func newConfig(host string, port int, scheme, path string, headers map[string]string, successThreshold int) Config {
	if headers == nil {
		headers = map[string]string{}
	}
	return Config{
		Host:                host,
		Port:                port,
		Scheme:              scheme,
		Path:                path,
		Headers:             headers,
		SuccessThreshold:    successThreshold,
		FailureThreshold:    DefaultFailureThreshold,
		TimeoutSeconds:      DefaultTimeoutSeconds,
		PeriodSeconds:       DefaultPeriodSeconds,
		InitialDelaySeconds: DefaultInitialDelaySeconds,
	}
}

// URL returns the probe target as an absolute URL.
func (c Config) URL() string {
	u := url.URL{
		Scheme: c.Scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   c.Path,
	}
	return u.String()
}

type userIDKey struct{}

// WithUserID returns a context carrying the id of the requesting user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// GetForContext resolves the user id from ctx and delegates to f. A context
// without a user id passes an empty id; factories that need one reject it.
func GetForContext(ctx context.Context, f Factory, workspaceID string, server machine.Server) (Config, error) {
	userID, _ := UserIDFromContext(ctx)
	return f.Get(userID, workspaceID, server)
}

// parseServerURL parses raw and requires both a scheme and a host.
func parseServerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &InfrastructureError{Message: fmt.Sprintf("malformed server url %q", raw), Err: err}
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return nil, &InfrastructureError{Message: fmt.Sprintf("malformed server url %q", raw), Err: errors.New("scheme and host are required")}
	}
	return u, nil
}

// explicitPort returns the URL's port, or 0 if none was given.
func explicitPort(u *url.URL) (int, error) {
	p := u.Port()
	if p == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return 0, &InfrastructureError{Message: fmt.Sprintf("invalid port %q in server url", p)}
	}
	return port, nil
}
