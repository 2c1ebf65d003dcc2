// Package host runs a small block program against the bridge the way a
// visual-programming runtime would.
//
// # Model
//
// A Program has three scripts:
//   - on_start runs once, on the first tick
//   - when_connected runs when Connected() becomes true
//   - when_message_received runs when MessageReceived() becomes true
//
// Hats are edge-activated. Each tick the runtime evaluates every hat's
// predicate once and runs the script only if the predicate is true now and
// was false on the previous tick. Because MessageReceived pulses
// true, false, true while messages are buffered, a message hat fires every
// other tick until the queue is drained.
//
// A predicate is only evaluated when its hat has a script, so a program
// without a message hat never advances the arrival edge detector.
//
// # Program files
//
//	on_start:
//	  - op: client
//	    host: localhost
//	    port: 8080
//	    client_id: scratch
//	  - op: connect
//	when_connected:
//	  - op: subscribe
//	    topic: "sensors/#"
//	when_message_received:
//	  - op: next_message
//	  - op: log
//	    text: "{{topic}} = {{message}}"
//
// Omitted step arguments take the block defaults listed on Step.
package host
