package mqtt

import "errors"

// Domain-specific errors for MQTT operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidEndpoint is returned when a client is requested for an
	// empty host or a port outside 1..65535.
	ErrInvalidEndpoint = errors.New("mqtt: invalid broker endpoint")

	// ErrInvalidTransport is returned when the configured transport is not ws or tcp.
	ErrInvalidTransport = errors.New("mqtt: invalid transport (must be ws or tcp)")

	// ErrConnectionFailed wraps the cause passed to a connect failure callback.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrInvalidTopic is returned for an empty topic or one that is not
	// allowed in the position it was used.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")

	// ErrClosed is passed to a pending connect failure callback when the
	// client is disconnected before the attempt completes.
	ErrClosed = errors.New("mqtt: client closed")
)
