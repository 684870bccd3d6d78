package penlive

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconnectBackOff_Schedule(t *testing.T) {
	b := defaultReconnectBackOff()

	want := []time.Duration{2, 4, 8, 16, 30, 30, 30}
	for i, w := range want {
		assert.Equal(t, w*time.Second, b.NextBackOff(), "attempt %d", i+1)
	}

	b.Reset()
	assert.Equal(t, 2*time.Second, b.NextBackOff())
}

func TestNewReconnectBackOff_Custom(t *testing.T) {
	b := NewReconnectBackOff(100*time.Millisecond, time.Second)

	for _, w := range []time.Duration{200, 400, 800, 1000} {
		assert.Equal(t, w*time.Millisecond, b.NextBackOff())
	}
}

func TestReconnectTimer_ScheduleAndFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := newReconnectTimer(clock, defaultReconnectBackOff())

	var fired atomic.Int32
	delay, ok := timer.Schedule(func() { fired.Add(1) })
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, delay)
	assert.Equal(t, 1, timer.Tries())
	assert.True(t, timer.Pending())

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}

func TestReconnectTimer_Stop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := newReconnectTimer(clock, defaultReconnectBackOff())

	var fired atomic.Int32
	_, ok := timer.Schedule(func() { fired.Add(1) })
	require.True(t, ok)

	timer.Stop()
	timer.Stop()
	assert.False(t, timer.Pending())
	assert.Equal(t, 1, timer.Tries(), "stopping keeps the episode")

	clock.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestReconnectTimer_Reset(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := newReconnectTimer(clock, defaultReconnectBackOff())

	for i := 0; i < 3; i++ {
		_, ok := timer.Schedule(func() {})
		require.True(t, ok)
	}
	require.Equal(t, 3, timer.Tries())

	timer.Reset()
	assert.Equal(t, 0, timer.Tries())
	assert.False(t, timer.Pending())

	delay, _ := timer.Schedule(func() {})
	assert.Equal(t, 2*time.Second, delay)
}

type stoppingBackOff struct{}

func (stoppingBackOff) NextBackOff() time.Duration { return backoff.Stop }

func (stoppingBackOff) Reset() {}

func TestReconnectTimer_BackOffStop(t *testing.T) {
	timer := newReconnectTimer(clockwork.NewFakeClock(), stoppingBackOff{})

	_, ok := timer.Schedule(func() {})
	assert.False(t, ok)
	assert.Equal(t, 0, timer.Tries())
	assert.False(t, timer.Pending())
}

func TestClient_BackOffStopFails(t *testing.T) {
	h := newHarness[testPayload](t)
	h.client.BackOff = stoppingBackOff{}
	require.NoError(t, h.client.Connect("wss://host/ws/pens?token=abc"))

	h.transport.last().close(1006)

	assert.Equal(t, Failed, h.client.State())
	assert.Equal(t, ErrMaxReconnect.Error(), h.client.Err())
}
