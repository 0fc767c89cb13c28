package overlay

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stateRecorder struct {
	ch chan CounterState
}

func newStateRecorder() *stateRecorder {
	return &stateRecorder{ch: make(chan CounterState, 256)}
}

func (r *stateRecorder) record(st CounterState) {
	r.ch <- st
}

// waitFor reads notifications until one satisfies pred.
func (r *stateRecorder) waitFor(t *testing.T, what string, pred func(CounterState) bool) CounterState {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-r.ch:
			if pred(st) {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", what)
			return CounterState{}
		}
	}
}

// waitDisplayed reads notifications until the counter shows want, failing if
// it overshoots on the way.
func (r *stateRecorder) waitDisplayed(t *testing.T, want, direction int) CounterState {
	t.Helper()
	return r.waitFor(t, "displayed value", func(st CounterState) bool {
		if direction > 0 {
			require.LessOrEqual(t, st.Displayed, want, "counter skipped past %d", want)
		} else {
			require.GreaterOrEqual(t, st.Displayed, want, "counter skipped past %d", want)
		}
		return st.Displayed == want
	})
}

// settle animates the counter to target, advancing the clock one step at a time.
func settle(t *testing.T, c *Counter, rec *stateRecorder, clock *clockwork.FakeClock, target, maxWins int) {
	t.Helper()
	from := c.State().Displayed
	c.Set(target, maxWins)

	steps, direction := target-from, 1
	if steps < 0 {
		steps, direction = -steps, -1
	}
	if steps == 0 {
		return
	}
	delay := min(time.Duration(steps)*StepDuration, MaxAnimationTime) / time.Duration(steps)
	for v := from + direction; v != target+direction; v += direction {
		clock.Advance(delay)
		rec.waitDisplayed(t, v, direction)
	}
}

func TestCounter_StepsThroughEveryValue(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newStateRecorder()
	c := NewCounter(clock, rec.record)
	defer c.Stop()

	settle(t, c, rec, clock, 1, 5)
	assert.Equal(t, "1/5", c.State().Text())

	start := clock.Now()
	c.Set(4, 5)

	var texts []string
	for want := 2; want <= 4; want++ {
		clock.Advance(StepDuration)
		texts = append(texts, rec.waitDisplayed(t, want, 1).Text())
	}

	assert.Equal(t, []string{"2/5", "3/5", "4/5"}, texts)
	assert.LessOrEqual(t, clock.Since(start), MaxAnimationTime)
	assert.False(t, c.State().Animating)
}

func TestCounter_RetargetRestartsFromDisplayedValue(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newStateRecorder()
	c := NewCounter(clock, rec.record)
	defer c.Stop()

	// 10 steps share the one-second cap, so each takes 100ms.
	c.Set(10, 10)
	for want := 1; want <= 3; want++ {
		clock.Advance(100 * time.Millisecond)
		rec.waitDisplayed(t, want, 1)
	}

	c.Set(6, 10)
	st := c.State()
	assert.Equal(t, 3, st.Displayed)
	assert.Equal(t, 6, st.Target)

	// The old 100ms ticker is gone; the new one steps every 150ms.
	clock.Advance(100 * time.Millisecond)
	assert.Never(t, func() bool { return c.State().Displayed != 3 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(50 * time.Millisecond)
	rec.waitDisplayed(t, 4, 1)
	clock.Advance(StepDuration)
	rec.waitDisplayed(t, 5, 1)
	clock.Advance(StepDuration)
	final := rec.waitDisplayed(t, 6, 1)

	assert.Equal(t, "6/10", final.Text())
	assert.False(t, final.Animating)
}

func TestCounter_LongAnimationsAreCapped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newStateRecorder()
	c := NewCounter(clock, rec.record)
	defer c.Stop()

	c.Set(20, 20)
	stepDelay := MaxAnimationTime / 20
	for want := 1; want <= 20; want++ {
		clock.Advance(stepDelay)
		rec.waitDisplayed(t, want, 1)
	}

	assert.Equal(t, "20/20", c.State().Text())
	assert.False(t, c.State().Animating)
}

func TestCounter_CountsDown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newStateRecorder()
	c := NewCounter(clock, rec.record)
	defer c.Stop()

	settle(t, c, rec, clock, 3, 5)
	c.Set(1, 5)

	clock.Advance(StepDuration)
	rec.waitDisplayed(t, 2, -1)
	clock.Advance(StepDuration)
	rec.waitDisplayed(t, 1, -1)

	assert.Equal(t, "1/5", c.State().Text())
}

func TestCounter_MaxWinsChangeDoesNotAnimate(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newStateRecorder()
	c := NewCounter(clock, rec.record)
	defer c.Stop()

	settle(t, c, rec, clock, 2, 3)
	clock.Advance(PulseDuration)
	rec.waitFor(t, "pulse end", func(st CounterState) bool { return !st.Pulse })

	c.Set(2, 7)
	st := rec.waitFor(t, "maxWins update", func(st CounterState) bool { return st.MaxWins == 7 })

	assert.Equal(t, "2/7", st.Text())
	assert.False(t, st.Animating)
	assert.False(t, st.Pulse)
}

func TestCounter_PulseClearsAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newStateRecorder()
	c := NewCounter(clock, rec.record)
	defer c.Stop()

	c.Set(1, 2)
	assert.True(t, c.State().Pulse)

	clock.Advance(StepDuration)
	st := rec.waitDisplayed(t, 1, 1)
	assert.True(t, st.Pulse)

	clock.Advance(PulseDuration - StepDuration)
	rec.waitFor(t, "pulse end", func(st CounterState) bool { return !st.Pulse })
	assert.False(t, c.State().Pulse)
}

func TestCounter_StopCancelsAnimation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCounter(clock, nil)

	c.Set(5, 5)
	c.Stop()
	clock.Advance(time.Second)

	assert.Never(t, func() bool { return c.State().Displayed != 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.False(t, c.State().Animating)
}
