package overlay

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	StepDuration     = 150 * time.Millisecond
	MaxAnimationTime = 1000 * time.Millisecond
	PulseDuration    = 300 * time.Millisecond
)

// CounterState is what a counter currently shows.
type CounterState struct {
	Displayed int
	Target    int
	MaxWins   int
	Pulse     bool
	Animating bool
}

// Text renders the counter as "wins/maxWins".
func (s CounterState) Text() string {
	return fmt.Sprintf("%d/%d", s.Displayed, s.MaxWins)
}

// Counter steps its displayed value one unit at a time toward a target. A new
// target cancels the running animation and restarts from whatever value is
// on screen. The whole animation takes steps*150ms, capped at one second.
type Counter struct {
	clock    clockwork.Clock
	onChange func(CounterState)

	mu         sync.Mutex
	state      CounterState
	generation uint64
	stop       chan struct{}
	pulseTimer clockwork.Timer
}

// NewCounter returns a counter at 0/2. onChange is called from the
// counter's goroutines after every visible change and must not block.
func NewCounter(clock clockwork.Clock, onChange func(CounterState)) *Counter {
	if onChange == nil {
		onChange = func(CounterState) {}
	}
	return &Counter{
		clock:    clock,
		onChange: onChange,
		state:    CounterState{MaxWins: defaultMaxWins},
	}
}

func (c *Counter) State() CounterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set moves the counter toward target. A call that only changes maxWins
// updates the text without animating.
func (c *Counter) Set(target, maxWins int) {
	c.mu.Lock()

	if target == c.state.Target {
		changed := c.state.MaxWins != maxWins
		c.state.MaxWins = maxWins
		st := c.state
		c.mu.Unlock()
		if changed {
			c.onChange(st)
		}
		return
	}

	c.cancelLocked()
	c.state.Target = target
	c.state.MaxWins = maxWins

	from := c.state.Displayed
	steps := target - from
	direction := 1
	if steps < 0 {
		steps, direction = -steps, -1
	}
	if steps == 0 {
		c.state.Animating = false
		c.state.Pulse = false
		st := c.state
		c.mu.Unlock()
		c.onChange(st)
		return
	}

	total := min(time.Duration(steps)*StepDuration, MaxAnimationTime)
	delay := total / time.Duration(steps)

	c.generation++
	gen := c.generation
	c.stop = make(chan struct{})
	c.state.Animating = true
	c.state.Pulse = true
	c.pulseTimer = c.clock.AfterFunc(PulseDuration, func() { c.endPulse(gen) })

	// Created before Set returns so a caller advancing a fake clock sees it.
	ticker := c.clock.NewTicker(delay)
	go c.animate(gen, c.stop, ticker, direction)

	st := c.state
	c.mu.Unlock()
	c.onChange(st)
}

// Stop cancels any running animation and pending pulse reset.
func (c *Counter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.state.Animating = false
	c.state.Pulse = false
}

func (c *Counter) animate(gen uint64, stop <-chan struct{}, ticker clockwork.Ticker, direction int) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
		}

		c.mu.Lock()
		if c.generation != gen {
			c.mu.Unlock()
			return
		}
		c.state.Displayed += direction
		done := c.state.Displayed == c.state.Target
		if done {
			c.state.Animating = false
		}
		st := c.state
		c.mu.Unlock()

		c.onChange(st)
		if done {
			return
		}
	}
}

func (c *Counter) endPulse(gen uint64) {
	c.mu.Lock()
	if c.generation != gen || !c.state.Pulse {
		c.mu.Unlock()
		return
	}
	c.state.Pulse = false
	st := c.state
	c.mu.Unlock()
	c.onChange(st)
}

func (c *Counter) cancelLocked() {
	c.generation++
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	if c.pulseTimer != nil {
		c.pulseTimer.Stop()
		c.pulseTimer = nil
	}
}
