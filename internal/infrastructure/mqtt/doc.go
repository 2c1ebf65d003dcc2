// Package mqtt provides non-blocking MQTT client handles for Tickbridge.
//
// This package manages:
//   - Broker addressing over WebSocket (ws://host:port/mqtt) or TCP
//   - Asynchronous connect with success and failure callbacks
//   - Fire-and-forget publish and subscribe at QoS 0
//   - Ordered delivery of inbound messages to a single callback
//   - Topic name and filter validation
//
// # Architecture
//
// A Factory holds the transport settings from config.yaml. The bridge asks
// it for one Client per configured endpoint:
//
//	polling host ↔ bridge.Adapter ↔ mqtt.Client ↔ broker
//
// No method blocks the caller. Network results come back on paho's
// goroutines through the callbacks.
//
// # Security Considerations
//
//   - Credentials come from mqtt.username and mqtt.password
//   - Connections are unencrypted; use a local broker or a trusted network
//
// # Usage
//
//	factory := mqtt.NewFactory(cfg.MQTT)
//	client, err := factory.NewClient("localhost", 8080, "scratch")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.SetOnMessageArrived(func(topic, payload string) {
//	    log.Printf("%s = %s", topic, payload)
//	})
//	client.Connect(func() { client.Subscribe("#") }, func(err error) { log.Print(err) })
//	defer client.Disconnect()
package mqtt
