// poller/poller.go
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Poller drives a refresh function on a fixed interval for as long as it
// runs. Each tick is independent: a failing refresh does not stop the
// loop, and ticks never overlap because the refresh runs synchronously
// inside the loop.
type Poller struct {
	interval time.Duration
	clock    clockwork.Clock

	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

func New(interval time.Duration, clock clockwork.Clock) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		interval: interval,
		clock:    clock,
		stop:     make(chan struct{}),
	}
}

// Start launches the poll loop. The refresh function receives a context
// that is cancelled when the poller stops.
func (p *Poller) Start(ctx context.Context, refresh func(context.Context)) {
	go p.loop(ctx, refresh)
}

func (p *Poller) loop(ctx context.Context, refresh func(context.Context)) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			refresh(ctx)
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the interval. Safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.stopped = true
		close(p.stop)
	}
}
