package bridge

import "errors"

// Errors recorded in Adapter.LastError. None of these are ever returned from
// the host-facing methods.
var (
	// ErrNoFactory is recorded when Configure is called on an adapter built without a client factory.
	ErrNoFactory = errors.New("bridge: no client factory")

	// ErrClientConstruction is recorded when the client factory fails or panics.
	ErrClientConstruction = errors.New("bridge: client construction failed")

	// ErrConnectFailed is recorded when the connect failure callback fires.
	ErrConnectFailed = errors.New("bridge: connect failed")

	// ErrConnectionLost is recorded when the broker drops an established connection.
	ErrConnectionLost = errors.New("bridge: connection lost")
)
