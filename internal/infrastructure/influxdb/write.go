package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint queues one point. The write is non-blocking; failures are
// reported through the SetOnError callback. Points written after Close
// are discarded.
//
// Example:
//
//	client.WritePoint("tickbridge_adapter",
//	    map[string]string{"client_id": "scratch"},
//	    map[string]any{"queue_depth": 3},
//	    time.Now())
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
