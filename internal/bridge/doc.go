// Package bridge adapts a callback-driven MQTT client to a host that can only
// poll for state on a fixed tick.
//
// The host calls the Adapter's command and query methods once per tick. The
// underlying client delivers connect results and inbound messages from its
// own goroutines. The Adapter turns those asynchronous events into
// synchronous, non-blocking answers:
//
//	Connected()        current connection flag
//	MessageReceived()  single-tick pulse while messages are buffered
//	NextMessage()      moves the oldest buffered message into the current slot
//	Topic(), Message() fields of the current message, or ""
//
// # Sessions
//
// Every client handle is bound to a session that owns its own connection
// flag and message queue. Callbacks capture the session they were registered
// with, so a late callback from a handle that has since been replaced only
// touches an orphaned session. Configure installs a fresh session, which is
// how all derived state is reset in one step.
//
// # Error handling
//
// Nothing on the host surface returns an error or blocks. Construction and
// connect failures are logged and kept in LastError; calls made before the
// adapter is configured or connected are ignored.
//
// # Usage
//
//	adapter := bridge.NewAdapter(factory)
//	adapter.Configure("localhost", 8080, "scratch")
//	adapter.Connect()
//
//	// every tick
//	if adapter.MessageReceived() {
//	    adapter.NextMessage()
//	    fmt.Println(adapter.Topic(), adapter.Message())
//	}
package bridge
