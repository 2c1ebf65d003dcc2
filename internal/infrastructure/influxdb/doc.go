// Package influxdb provides InfluxDB connectivity for Tickbridge telemetry.
//
// It wraps the official influxdb-client-go v2 library with connection
// checking, non-blocking batched writes and health monitoring.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.SetOnError(func(err error) { logger.Warn("influx write", "error", err) })
//	client.WritePoint("tickbridge_adapter", tags, fields, time.Now())
//
// # Error Handling
//
// Writes never return errors; batch failures arrive on the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
