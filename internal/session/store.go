package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/wincounter/internal/adapter/metrics"
	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSweepProbability    = 0.01
	defaultDurableWriteTimeout = 5 * time.Second
	defaultDurableReadTimeout  = 2 * time.Second

	keyPrefix = "session:"

	writeStripes = 64
)

// ErrCorruptRecord is returned when the durable tier holds a value that is
// not valid JSON.
var ErrCorruptRecord = errors.New("stored session record is not valid JSON")

// DurableKey returns the durable-tier key for a session.
func DurableKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Options tunes a Store. Zero values fall back to the defaults.
type Options struct {
	TTL                 time.Duration
	SweepProbability    float64
	DurableWriteTimeout time.Duration
	DurableReadTimeout  time.Duration

	// Rand returns a value in [0, 1); it decides when to sweep.
	Rand func() float64
}

// Store maps session IDs to scoreboard records across two tiers: a
// process-local memory map, authoritative while unexpired, and a slower
// durable key-value service shared between instances.
//
// Reads never fail on storage errors; they fall through to the next tier and
// finally to domain.DefaultSessionState. Writes return as soon as the memory
// tier is updated and mirror to the durable tier in the background.
type Store struct {
	durable domain.DurableStore
	clock   clockwork.Clock
	metrics *metrics.StoreMetrics

	mem     *memoryTier
	reads   singleflight.Group
	stripes [writeStripes]sync.Mutex
	pending sync.WaitGroup

	ttl              time.Duration
	writeTimeout     time.Duration
	readTimeout      time.Duration
	sweepProbability float64
	randFloat        func() float64
}

func NewStore(durable domain.DurableStore, clock clockwork.Clock, m *metrics.StoreMetrics, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = domain.SessionTTL
	}
	if opts.SweepProbability < 0 {
		opts.SweepProbability = 0
	}
	if opts.SweepProbability == 0 {
		opts.SweepProbability = defaultSweepProbability
	}
	if opts.DurableWriteTimeout <= 0 {
		opts.DurableWriteTimeout = defaultDurableWriteTimeout
	}
	if opts.DurableReadTimeout <= 0 {
		opts.DurableReadTimeout = defaultDurableReadTimeout
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}

	return &Store{
		durable:          durable,
		clock:            clock,
		metrics:          m,
		mem:              newMemoryTier(clock),
		ttl:              opts.TTL,
		writeTimeout:     opts.DurableWriteTimeout,
		readTimeout:      opts.DurableReadTimeout,
		sweepProbability: opts.SweepProbability,
		randFloat:        opts.Rand,
	}
}

// Get returns the session's record: memory tier, then durable tier, then the
// default record. It fails with ErrCorruptRecord, or with ctx's error when ctx
// ends while the durable tier is being read.
func (s *Store) Get(ctx context.Context, sessionID string) (jsonmerge.Value, error) {
	s.maybeSweep()
	return s.current(ctx, sessionID)
}

// Put merges update into the session's current record (or the default
// record), stores the result in memory with a fresh TTL and returns it. A
// corrupt durable record is replaced. The durable copy is written by a
// detached goroutine whose failure is only logged.
func (s *Store) Put(ctx context.Context, sessionID string, update jsonmerge.Value) (jsonmerge.Value, error) {
	if sessionID == "" {
		return jsonmerge.Value{}, domain.ErrSessionIDRequired
	}
	s.maybeSweep()

	// Serialises read-merge-write per session within this process.
	mu := s.stripe(sessionID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.current(ctx, sessionID)
	switch {
	case errors.Is(err, ErrCorruptRecord):
		slog.WarnContext(ctx, "Replacing corrupt durable record", "session_id", sessionID, "error", err)
		current = domain.DefaultSessionState()
	case err != nil:
		return jsonmerge.Value{}, err
	}

	merged := jsonmerge.Merge(current, update)
	s.mem.set(sessionID, merged, s.ttl)
	s.metrics.Writes.Inc()
	s.metrics.MemoryEntries.Set(float64(s.mem.size()))

	s.mirror(ctx, sessionID, merged)
	return merged, nil
}

// Flush blocks until every background durable write has finished or ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for durable writes: %w", ctx.Err())
	}
}

// Sweep evicts every expired memory entry and returns the count.
func (s *Store) Sweep() int {
	evicted := s.mem.evictExpired()
	s.metrics.Sweeps.Inc()
	s.metrics.Evictions.Add(float64(evicted))
	s.metrics.MemoryEntries.Set(float64(s.mem.size()))
	if evicted > 0 {
		slog.Debug("Evicted expired sessions", "count", evicted, "remaining", s.mem.size())
	}
	return evicted
}

// Len returns the number of memory entries, expired ones included.
func (s *Store) Len() int {
	return s.mem.size()
}

func (s *Store) current(ctx context.Context, sessionID string) (jsonmerge.Value, error) {
	if state, ok := s.mem.get(sessionID); ok {
		s.metrics.Reads.WithLabelValues(metrics.TierMemory).Inc()
		return state, nil
	}

	state, ok, err := s.loadDurable(ctx, sessionID)
	if err != nil {
		return jsonmerge.Value{}, err
	}
	if ok {
		s.metrics.Reads.WithLabelValues(metrics.TierDurable).Inc()
		return state, nil
	}

	s.metrics.Reads.WithLabelValues(metrics.TierDefault).Inc()
	return domain.DefaultSessionState(), nil
}

// loadDurable reads through to the durable tier. Concurrent misses for the
// same session share one request, which runs on its own timeout so that one
// caller giving up does not fail the others. Storage errors count as a miss.
func (s *Store) loadDurable(ctx context.Context, sessionID string) (jsonmerge.Value, bool, error) {
	key := DurableKey(sessionID)
	shared := context.WithoutCancel(ctx)

	ch := s.reads.DoChan(key, func() (any, error) {
		readCtx, cancel := context.WithTimeout(shared, s.readTimeout)
		defer cancel()

		data, err := s.durable.Get(readCtx, key)
		if err != nil {
			return nil, err
		}
		state, err := jsonmerge.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		return state, nil
	})

	var (
		result any
		err    error
	)
	select {
	case res := <-ch:
		result, err = res.Val, res.Err
	case <-ctx.Done():
		return jsonmerge.Value{}, false, fmt.Errorf("reading session %s: %w", sessionID, ctx.Err())
	}

	switch {
	case err == nil:
		return result.(jsonmerge.Value), true, nil
	case errors.Is(err, ErrCorruptRecord):
		return jsonmerge.Value{}, false, err
	case errors.Is(err, domain.ErrNotFound):
		return jsonmerge.Value{}, false, nil
	default:
		s.metrics.DurableErrors.WithLabelValues("get").Inc()
		slog.WarnContext(ctx, "Durable tier read failed, treating as miss", "session_id", sessionID, "error", err)
		return jsonmerge.Value{}, false, nil
	}
}

func (s *Store) mirror(ctx context.Context, sessionID string, state jsonmerge.Value) {
	payload, err := state.MarshalJSON()
	if err != nil {
		s.metrics.DurableMirrors.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "Failed to encode session for durable tier", "session_id", sessionID, "error", err)
		return
	}

	// Detached from the request so the response never waits on it; keeps
	// the correlation ID for logging. Writes are not ordered against each
	// other: two quick Puts to one session may land in the durable tier in
	// either order, while the memory tier holds the latest merge.
	bg := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		writeCtx, cancel := context.WithTimeout(bg, s.writeTimeout)
		defer cancel()

		if err := s.durable.Put(writeCtx, DurableKey(sessionID), payload, s.ttl); err != nil {
			s.metrics.DurableMirrors.WithLabelValues("error").Inc()
			s.metrics.DurableErrors.WithLabelValues("put").Inc()
			slog.WarnContext(writeCtx, "Durable mirror failed", "session_id", sessionID, "error", err)
			return
		}
		s.metrics.DurableMirrors.WithLabelValues("ok").Inc()
	}()
}

func (s *Store) maybeSweep() {
	if s.randFloat() < s.sweepProbability {
		s.Sweep()
	}
}

func (s *Store) stripe(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.stripes[h.Sum32()%writeStripes]
}
