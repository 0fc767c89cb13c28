package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
)

// LegacyDemoKey is read (never written) by the demo endpoints when this
// process has no demo record yet.
const LegacyDemoKey = "temp_session"

// DemoStore holds the single record behind the session-less endpoints. It
// lives for the process lifetime and is never persisted, so separate
// instances each have their own. Real controllers use the per-session Store.
type DemoStore struct {
	durable domain.DurableStore

	mu      sync.Mutex
	state   jsonmerge.Value
	written bool
}

func NewDemoStore(durable domain.DurableStore) *DemoStore {
	return &DemoStore{
		durable: durable,
		state:   domain.DefaultDemoState(),
	}
}

// Get returns the demo record. Before the first Update it tries the legacy
// durable key and otherwise returns domain.DefaultDemoState.
func (d *DemoStore) Get(ctx context.Context) jsonmerge.Value {
	d.mu.Lock()
	if d.written {
		state := d.state
		d.mu.Unlock()
		return state
	}
	d.mu.Unlock()

	data, err := d.durable.Get(ctx, LegacyDemoKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.DebugContext(ctx, "Legacy demo key unavailable, using defaults", "error", err)
		}
		return domain.DefaultDemoState()
	}

	state, err := jsonmerge.Parse(data)
	if err != nil {
		slog.DebugContext(ctx, "Legacy demo key is not valid JSON, using defaults", "error", err)
		return domain.DefaultDemoState()
	}
	return state
}

// Update merges update into the demo record and returns the result.
func (d *DemoStore) Update(update jsonmerge.Value) jsonmerge.Value {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = jsonmerge.Merge(d.state, update)
	d.written = true
	return d.state
}

// NopDurable is the durable tier used when none is configured: every key is
// missing and writes are discarded.
type NopDurable struct{}

func (NopDurable) Get(context.Context, string) ([]byte, error) { return nil, domain.ErrNotFound }

func (NopDurable) Put(context.Context, string, []byte, time.Duration) error { return nil }

func (NopDurable) Ping(context.Context) error { return nil }
