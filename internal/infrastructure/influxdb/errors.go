package influxdb

import "errors"

// Errors returned by Connect, HealthCheck and passed to the SetOnError
// callback. Compare with errors.Is.
var (
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrNotConnected     = errors.New("influxdb: client closed")
	ErrWriteFailed      = errors.New("influxdb: write failed")
)
