package penlive

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// defaultConnectTimeout is the default handshake timeout
	defaultConnectTimeout = 10 * time.Second

	// defaultMaxReconnectAttempts is how many closes in a row are retried before giving up
	defaultMaxReconnectAttempts = 5

	// defaultReconnectBase is the delay unit: attempt n waits base * 2^n
	defaultReconnectBase = 1 * time.Second

	// defaultReconnectMax caps the delay between attempts
	defaultReconnectMax = 30 * time.Second

	// closeWriteTimeout bounds sending the close frame on Close
	closeWriteTimeout = 250 * time.Millisecond

	// closeAbnormal is reported when the connection drops without a close frame
	closeAbnormal = 1006
)

// NewReconnectBackOff returns the reconnect schedule used by NewClient: base*2, base*4, ...
// capped at maxDelay, with no jitter. With the defaults this is 2s, 4s, 8s, 16s, 30s.
func NewReconnectBackOff(base, maxDelay time.Duration) *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     2 * base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxDelay,
	}
	b.Reset()
	return b
}

func defaultReconnectBackOff() *backoff.ExponentialBackOff {
	return NewReconnectBackOff(defaultReconnectBase, defaultReconnectMax)
}
