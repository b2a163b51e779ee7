// ABOUTME: Recurring poll loop that keeps the sync store warm
// ABOUTME: Handles interval ticks, at-most-one-in-flight fetches, and failure logging
package poll

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/harperreed/bellhop/remote"
	"github.com/harperreed/bellhop/store"
)

// Logger is the minimal logging surface the poller needs. Satisfied by
// *log.Logger and *charmbracelet/log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Fetcher is the slice of the API the poller consumes.
type Fetcher interface {
	List(ctx context.Context, opts remote.ListOptions) (remote.ListResult, error)
}

// Poller refreshes the store window on a fixed cadence. Failures leave the
// store untouched and self-heal on the next tick; the loop never panics out
// and never stacks timers.
type Poller struct {
	fetcher  Fetcher
	store    *store.Store
	interval time.Duration
	window   int
	logger   Logger

	inFlight atomic.Bool
	done     chan struct{}
}

// New creates a poller. interval and window fall back to the remote
// defaults when unset.
func New(fetcher Fetcher, s *store.Store, interval time.Duration, window int, logger Logger) *Poller {
	if interval <= 0 {
		interval = remote.DefaultPollInterval
	}
	if window <= 0 {
		window = remote.DefaultWindowSize
	}
	return &Poller{
		fetcher:  fetcher,
		store:    s,
		interval: interval,
		window:   window,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the loop. An immediate out-of-band poll runs first; the
// recurring timer takes over afterwards. Cancel the context to stop.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Wait blocks until the loop has exited after cancellation.
func (p *Poller) Wait() {
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.PollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce performs a single fetch-and-merge. If a poll is already in
// flight the call is skipped, keeping at most one outstanding request.
// Returns whether a fetch was actually issued.
func (p *Poller) PollOnce(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer p.inFlight.Store(false)

	result, err := p.fetcher.List(ctx, remote.ListOptions{
		Page:  1,
		Limit: p.window,
	})
	if err != nil {
		if ctx.Err() == nil && p.logger != nil {
			p.logger.Printf("poll failed, will retry next tick: %v", err)
		}
		return true
	}

	p.store.ReplaceWindow(result.Data)
	return true
}
