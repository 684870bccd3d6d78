package penlive

import (
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
)

type timerCallback func()

// reconnectTimer schedules one pending reconnect at a time. It is not safe for concurrent
// use; the Client guards it with its own lock.
type reconnectTimer struct {
	clock   clockwork.Clock
	backOff backoff.BackOff
	timer   clockwork.Timer
	tries   int
}

func newReconnectTimer(clock clockwork.Clock, backOff backoff.BackOff) *reconnectTimer {
	return &reconnectTimer{
		clock:   clock,
		backOff: backOff,
	}
}

// Reset cancels any pending callback and starts a new failure episode.
func (t *reconnectTimer) Reset() {
	t.Stop()
	t.tries = 0
	t.backOff.Reset()
}

// Stop cancels the pending callback, if any. Tries are kept.
func (t *reconnectTimer) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether a callback is scheduled and has not fired yet.
func (t *reconnectTimer) Pending() bool {
	return t.timer != nil
}

// Tries is the number of reconnects scheduled in the current episode.
func (t *reconnectTimer) Tries() int {
	return t.tries
}

// Schedule counts a new try and arranges for callback to run after the next backoff delay.
// It returns false, scheduling nothing, when the backoff gives up.
func (t *reconnectTimer) Schedule(callback timerCallback) (time.Duration, bool) {
	t.Stop()

	delay := t.backOff.NextBackOff()
	if delay == backoff.Stop {
		return 0, false
	}

	t.tries++
	t.timer = t.clock.AfterFunc(delay, callback)
	return delay, true
}

// fired clears the pending handle once the callback has run.
func (t *reconnectTimer) fired() {
	t.timer = nil
}
