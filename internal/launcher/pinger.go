package launcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tuannvm/agentboot/internal/probe"
)

// Pinger issues one liveness request. A nil error means the agent is healthy.
type Pinger interface {
	Ping(ctx context.Context, target probe.Config) error
}

// HTTPPinger pings agents over HTTP and treats 200 as healthy.
type HTTPPinger struct {
	httpClient *http.Client
}

// NewHTTPPinger creates a pinger whose requests give up after timeout.
func NewHTTPPinger(timeout time.Duration) *HTTPPinger {
	return &HTTPPinger{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ping implements Pinger.
func (p *HTTPPinger) Ping(ctx context.Context, target probe.Config) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL(), nil)
	if err != nil {
		return fmt.Errorf("failed to build liveness request: %w", err)
	}
	for name, value := range target.Headers {
		req.Header.Set(name, value)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach agent: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("liveness request failed (%d)", resp.StatusCode)
	}
	return nil
}
