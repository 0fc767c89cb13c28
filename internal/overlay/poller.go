package overlay

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
)

const DefaultPollInterval = 200 * time.Millisecond

// Fetcher returns a session's current record.
type Fetcher interface {
	Fetch(ctx context.Context, sessionID string) (jsonmerge.Value, error)
}

// Renderer draws a View. It is only ever called from the poller's render
// loop.
type Renderer interface {
	Render(View)
}

// View is everything needed to draw one frame.
type View struct {
	Target   Target
	Frame    Frame
	Counters map[string]CounterState
}

// Stats counts poll outcomes.
type Stats struct {
	Sent    int64
	Applied int64
	Dropped int64
	Failed  int64
}

type fetchResult struct {
	seq   uint64
	state jsonmerge.Value
	err   error
}

// Poller fetches the target's record on a fixed interval and renders it.
// Every fetch runs in its own goroutine tagged with a sequence number; a
// response older than the last applied one is dropped. Counter state and
// rendering belong to the single loop in Run.
type Poller struct {
	fetcher  Fetcher
	renderer Renderer
	target   Target
	clock    clockwork.Clock
	interval time.Duration

	counters       map[string]*Counter
	counterChanged chan struct{}
	frame          Frame

	sent, applied, dropped, failed atomic.Int64
}

// NewPoller returns a poller. A zero interval uses DefaultPollInterval.
func NewPoller(fetcher Fetcher, renderer Renderer, target Target, clock clockwork.Clock, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	p := &Poller{
		fetcher:        fetcher,
		renderer:       renderer,
		target:         target,
		clock:          clock,
		interval:       interval,
		counters:       make(map[string]*Counter, len(domain.PlayerIDs)),
		counterChanged: make(chan struct{}, 1),
	}
	for _, id := range domain.PlayerIDs {
		p.counters[id] = NewCounter(clock, p.notifyCounterChanged)
	}
	return p
}

func (p *Poller) Stats() Stats {
	return Stats{
		Sent:    p.sent.Load(),
		Applied: p.applied.Load(),
		Dropped: p.dropped.Load(),
		Failed:  p.failed.Load(),
	}
}

// Run polls until ctx is cancelled. Fetch errors never stop it: the last
// good record stays on screen, or the session default when there is none.
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	results := make(chan fetchResult)
	var inflight sync.WaitGroup
	defer inflight.Wait()
	defer p.stopCounters()

	var (
		seq, lastApplied uint64
		haveData         bool
		failing          bool
	)

	poll := func() {
		seq++
		p.sent.Add(1)
		inflight.Add(1)
		go func(seq uint64) {
			defer inflight.Done()
			state, err := p.fetcher.Fetch(ctx, p.target.SessionID)
			select {
			case results <- fetchResult{seq: seq, state: state, err: err}:
			case <-ctx.Done():
			}
		}(seq)
	}

	slog.InfoContext(ctx, "Overlay poller started", "session_id", p.target.SessionID, "player", p.target.Player, "interval", p.interval)
	poll()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Overlay poller stopped", "session_id", p.target.SessionID)
			return nil

		case <-ticker.Chan():
			poll()

		case res := <-results:
			if res.err != nil {
				p.failed.Add(1)
				if !failing {
					slog.WarnContext(ctx, "Failed to fetch overlay data", "session_id", p.target.SessionID, "error", res.err)
					failing = true
				}
				if !haveData {
					haveData = true
					p.apply(domain.DefaultSessionState())
				}
				continue
			}
			if failing {
				slog.InfoContext(ctx, "Overlay data fetch recovered", "session_id", p.target.SessionID)
				failing = false
			}
			if res.seq <= lastApplied {
				p.dropped.Add(1)
				continue
			}
			lastApplied = res.seq
			haveData = true
			p.applied.Add(1)
			p.apply(res.state)

		case <-p.counterChanged:
			if haveData {
				p.draw()
			}
		}
	}
}

func (p *Poller) apply(state jsonmerge.Value) {
	p.frame = Resolve(state, p.target.Player)
	for _, panel := range p.frame.VisiblePanels() {
		p.counters[panel.ID].Set(panel.Wins, p.frame.MaxWins)
	}
	p.draw()
}

func (p *Poller) draw() {
	states := make(map[string]CounterState, len(p.counters))
	for id, c := range p.counters {
		states[id] = c.State()
	}
	p.renderer.Render(View{Target: p.target, Frame: p.frame, Counters: states})
}

func (p *Poller) notifyCounterChanged(CounterState) {
	select {
	case p.counterChanged <- struct{}{}:
	default:
	}
}

func (p *Poller) stopCounters() {
	for _, c := range p.counters {
		c.Stop()
	}
}
