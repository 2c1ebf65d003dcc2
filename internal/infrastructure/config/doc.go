// Package config loads Tickbridge's YAML configuration.
//
// Values are resolved in three layers: built-in defaults, then the YAML
// file, then TICKBRIDGE_* environment variables. Load validates the result
// and reports every problem at once.
//
// Broker host, port and client ID are not configured here; they come from
// the host program's client step. The mqtt section only sets transport
// options shared by every client.
//
// Keep the MQTT password, InfluxDB token and JWT secret in the environment:
//
//	TICKBRIDGE_MQTT_PASSWORD, TICKBRIDGE_INFLUXDB_TOKEN, TICKBRIDGE_JWT_SECRET
package config
