// Package logging builds the slog-based logger shared by every Tickbridge
// component.
//
// Entries carry "service" and "version" attributes. Components add their
// own with With("component", name); the bridge, host, journal and mqtt
// packages accept the logger through small Debug/Info/Warn/Error
// interfaces, so tests can pass their own recorders.
//
// Configured under logging: in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Message payloads are only logged at debug. Credentials never are.
package logging
