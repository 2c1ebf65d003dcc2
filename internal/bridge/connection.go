package bridge

import "sync/atomic"

// ConnectionState tracks whether a connect attempt has succeeded.
//
// It only moves to connected through a connect success callback. Nothing
// moves it back automatically: a broker-side disconnect is logged but not
// reflected here. A failed attempt leaves it untouched, so callers cannot
// tell "never attempted" from "attempt failed".
type ConnectionState struct {
	connected atomic.Bool
}

// MarkConnected records a successful connect. Calling it again is a no-op.
func (s *ConnectionState) MarkConnected() {
	s.connected.Store(true)
}

// MarkDisconnected clears the flag. Only used when the adapter resets.
func (s *ConnectionState) MarkDisconnected() {
	s.connected.Store(false)
}

// IsConnected returns the current flag.
func (s *ConnectionState) IsConnected() bool {
	return s.connected.Load()
}
