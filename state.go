package penlive

// State is where a Client is in its connection lifecycle.
type State int

const (
	// Idle - no target, nothing dialed
	Idle State = iota
	// Connecting - a transport connection is being opened
	Connecting
	// Open - connected and receiving
	Open
	// Closed - the transport closed and no retry has been scheduled yet
	Closed
	// Reconnecting - waiting on the backoff timer before the next attempt
	Reconnecting
	// Failed - reconnect attempts are exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Reconnecting:
		return "reconnecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
