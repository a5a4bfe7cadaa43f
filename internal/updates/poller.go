package updates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller re-runs the checker on a fixed interval and keeps the last result.
type Poller struct {
	Checker  *Checker
	Interval time.Duration

	mu   sync.RWMutex
	last Info
	seen bool
}

// Run checks once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	p.store(p.Checker.CheckForUpdates(ctx))

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.store(p.Checker.CheckForUpdates(ctx))
		}
	}
}

// Refresh bypasses the cache.
func (p *Poller) Refresh(ctx context.Context) Info {
	return p.store(p.Checker.Fetch(ctx))
}

func (p *Poller) store(info Info) Info {
	p.mu.Lock()
	p.last, p.seen = info, true
	p.mu.Unlock()
	if info.UpdateAvailable {
		log.Info().Str("current", info.CurrentVersion).Str("latest", info.LatestVersion).Msg("updates: new version available")
	}
	return info
}

// Last returns false until the first check has finished.
func (p *Poller) Last() (Info, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.seen
}

func (p *Poller) Releases(ctx context.Context) ([]Release, error) {
	return p.Checker.Releases(ctx)
}

// Verify checks the manifest of the last check. Only URLs taken from the
// release feed are ever requested. A non-empty want must match its version.
func (p *Poller) Verify(ctx context.Context, want string) (Manifest, error) {
	info, ok := p.Last()
	if !ok || info.Manifest == nil {
		return Manifest{}, ErrNoUpdate
	}
	m := *info.Manifest
	if want != "" && want != m.Version {
		return m, fmt.Errorf("%w: want %s, latest %s", ErrVersionMismatch, want, m.Version)
	}
	return m, p.Checker.Verify(ctx, m)
}
