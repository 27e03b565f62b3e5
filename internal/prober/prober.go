// Package prober performs single bounded-time liveness checks of
// monitor URLs. Every failure mode (DNS, connect, TLS, timeout,
// HTTP >= 400) collapses into an Unreachable outcome; a probe never
// returns an error, so one bad target cannot abort a cycle.
package prober

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type Outcome struct {
	Up      bool
	Code    int
	Latency time.Duration
}

type Prober struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

func New(cfg Config) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Prober{
		client:    newHTTPClient(cfg),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

// Probe issues one GET against rawURL. Callers must not pass an empty
// URL; malformed ones simply come back Unreachable.
func (p *Prober) Probe(ctx context.Context, rawURL string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalizeURL(rawURL), nil)
	if err != nil {
		return Outcome{Up: false, Latency: time.Since(start)}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Outcome{Up: false, Latency: time.Since(start)}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	return Outcome{
		Up:      code >= 200 && code <= 399,
		Code:    code,
		Latency: time.Since(start),
	}
}

func normalizeURL(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return t
	}
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t
	}
	return "http://" + t
}
