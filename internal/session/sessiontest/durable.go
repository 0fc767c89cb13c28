// Package sessiontest provides an in-memory durable tier for tests.
package sessiontest

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/wincounter/internal/domain"
)

// Durable is a map-backed domain.DurableStore that honours TTLs against the
// given clock. Setting GetErr or PutErr makes the matching call fail. A
// non-nil GetHook runs before each Get; its error is returned instead.
type Durable struct {
	clock clockwork.Clock

	mu      sync.Mutex
	values  map[string]durableValue
	gets    int
	puts    int
	GetErr  error
	PutErr  error
	GetHook func(ctx context.Context, key string) error
	PutHook func(key string)
}

type durableValue struct {
	data      []byte
	expiresAt time.Time
}

func NewDurable(clock clockwork.Clock) *Durable {
	return &Durable{clock: clock, values: make(map[string]durableValue)}
}

func (d *Durable) Get(ctx context.Context, key string) ([]byte, error) {
	d.mu.Lock()
	hook := d.GetHook
	d.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, key); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.gets++
	if d.GetErr != nil {
		return nil, d.GetErr
	}
	v, ok := d.values[key]
	if !ok || !d.clock.Now().Before(v.expiresAt) {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v.data...), nil
}

func (d *Durable) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	d.mu.Lock()
	hook := d.PutHook
	d.puts++
	if d.PutErr != nil {
		err := d.PutErr
		d.mu.Unlock()
		return err
	}
	d.values[key] = durableValue{data: append([]byte(nil), value...), expiresAt: d.clock.Now().Add(ttl)}
	d.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	return nil
}

func (d *Durable) Ping(context.Context) error { return nil }

// Seed stores raw bytes under key with the given TTL.
func (d *Durable) Seed(key string, value []byte, ttl time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = durableValue{data: value, expiresAt: d.clock.Now().Add(ttl)}
}

// Raw returns the stored bytes for key, ignoring expiry.
func (d *Durable) Raw(key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.values[key]
	return v.data, ok
}

func (d *Durable) Gets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gets
}

func (d *Durable) Puts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.puts
}
