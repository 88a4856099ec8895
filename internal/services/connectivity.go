package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Pinger is anything that can tell whether the hosted store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connectivity holds the online flag read before every remote attempt.
type Connectivity struct {
	online    atomic.Bool
	mu        sync.Mutex
	listeners []func(ctx context.Context, online bool)
}

func NewConnectivity(online bool) *Connectivity {
	c := &Connectivity{}
	c.online.Store(online)
	return c
}

func (c *Connectivity) Online() bool {
	return c.online.Load()
}

// Set updates the flag. Listeners run synchronously, only when the value
// actually changes.
func (c *Connectivity) Set(ctx context.Context, online bool) {
	if c.online.Swap(online) == online {
		return
	}
	slog.InfoContext(ctx, "Connectivity changed", "component", "inventory", "online", online)

	c.mu.Lock()
	listeners := append([]func(context.Context, bool){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(ctx, online)
	}
}

// OnChange registers fn to be called on every transition.
func (c *Connectivity) OnChange(fn func(ctx context.Context, online bool)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Probe pings once and updates the flag from the result.
func (c *Connectivity) Probe(ctx context.Context, p Pinger, timeout time.Duration) bool {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := p.Ping(pctx)
	if err != nil && ctx.Err() != nil {
		// Shutting down; leave the flag alone.
		return c.Online()
	}
	if err != nil {
		slog.DebugContext(ctx, "Connectivity probe failed", "component", "inventory", "error", err)
	}
	c.Set(ctx, err == nil)
	return err == nil
}

// RunProbe probes every interval until ctx is done.
func (c *Connectivity) RunProbe(ctx context.Context, p Pinger, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Probe(ctx, p, timeout)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx, p, timeout)
		}
	}
}
