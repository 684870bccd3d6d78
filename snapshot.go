package penlive

// Snapshot is a consistent copy of what a Client exposes to its consumer.
type Snapshot[T any] struct {
	// Payload is the last successfully decoded message, nil until the first one arrives.
	Payload *T

	// Err describes why the channel is degraded. Empty while healthy.
	Err string

	State   State
	Attempt int
	Target  string
}

// Degraded reports whether the consumer should show a connection warning.
func (s Snapshot[T]) Degraded() bool {
	return s.Err != ""
}
