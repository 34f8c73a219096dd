// Package dashboard drives the admin panel's polling widgets. There is
// no push channel anywhere in the tracking subsystem: widgets fetch on
// start and again on every interval tick.
package dashboard

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultInterval is the polling period widgets use unless configured
// otherwise. The per-user detail view polls faster.
const (
	DefaultInterval    = 30 * time.Second
	DetailViewInterval = 15 * time.Second
)

// FetchFunc loads one widget snapshot. Returning an empty result is a
// valid "no data" state, not an error.
type FetchFunc func(ctx context.Context) (any, error)

// Poller refreshes one widget's data at a fixed interval, keeping the
// latest successful snapshot for renderers to read. A fetch failure is
// logged and the previous snapshot stays visible until the next tick.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc

	mu        sync.RWMutex
	latest    any
	fetchedAt time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

func NewPoller(name string, interval time.Duration, fetch FetchFunc) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		stop:     make(chan struct{}),
	}
}

// Start fetches immediately, then keeps refreshing every interval until
// Stop is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.refresh(ctx)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Latest returns the most recent snapshot and when it was fetched. A nil
// snapshot means no fetch has succeeded yet; renderers show their empty
// state.
func (p *Poller) Latest() (any, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.fetchedAt
}

func (p *Poller) refresh(ctx context.Context) {
	data, err := p.fetch(ctx)
	if err != nil {
		log.Printf("Poller %s fetch failed: %v", p.name, err)
		return
	}

	p.mu.Lock()
	p.latest = data
	p.fetchedAt = time.Now()
	p.mu.Unlock()
}
