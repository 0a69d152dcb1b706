package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces requests per external host with a token bucket and
// allows at most one in-flight request per host.
type HostLimiter struct {
	mu              sync.Mutex
	defaultInterval time.Duration
	overrides       map[string]time.Duration // host suffix -> interval
	hosts           map[string]*hostGate
}

type hostGate struct {
	limiter *rate.Limiter
	slot    chan struct{}
}

// NewHostLimiter builds a limiter. overrides are matched by host suffix,
// e.g. "codechef.com" also covers "www.codechef.com".
func NewHostLimiter(defaultInterval time.Duration, overrides map[string]time.Duration) *HostLimiter {
	copied := make(map[string]time.Duration, len(overrides))
	for k, v := range overrides {
		copied[strings.ToLower(k)] = v
	}
	return &HostLimiter{
		defaultInterval: defaultInterval,
		overrides:       copied,
		hosts:           make(map[string]*hostGate),
	}
}

// Interval returns the minimum spacing applied to host
func (l *HostLimiter) Interval(host string) time.Duration {
	host = normalizeHost(host)
	best := ""
	interval := l.defaultInterval
	for suffix, d := range l.overrides {
		if (host == suffix || strings.HasSuffix(host, "."+suffix)) && len(suffix) > len(best) {
			best = suffix
			interval = d
		}
	}
	return interval
}

// Acquire blocks until host may be hit again. The returned release must be
// called once the request has finished.
func (l *HostLimiter) Acquire(ctx context.Context, host string) (func(), error) {
	gate := l.gate(host)

	select {
	case gate.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { <-gate.slot }

	if err := gate.limiter.Wait(ctx); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

func (l *HostLimiter) gate(host string) *hostGate {
	host = normalizeHost(host)

	l.mu.Lock()
	defer l.mu.Unlock()

	if g, ok := l.hosts[host]; ok {
		return g
	}

	limit := rate.Inf
	if interval := l.Interval(host); interval > 0 {
		limit = rate.Every(interval)
	}
	g := &hostGate{
		limiter: rate.NewLimiter(limit, 1),
		slot:    make(chan struct{}, 1),
	}
	l.hosts[host] = g
	return g
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}
