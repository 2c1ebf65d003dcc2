package bridge

// ArrivalEdgeDetector turns "the queue is non-empty" into a one-tick pulse.
//
// Each Poll either reports the queue state or, if the previous Poll returned
// true, returns false and re-arms. A host polling every tick therefore sees
// true, false, true, false... for as long as messages stay buffered, whether
// or not it drains them. Hosts with edge-activated triggers rely on the
// false tick between pulses to fire again.
//
// Not safe for concurrent use; the Adapter serialises access.
type ArrivalEdgeDetector struct {
	suppressedLastTrue bool
}

// Poll observes q and advances the detector.
func (d *ArrivalEdgeDetector) Poll(q *MessageQueue) bool {
	if d.suppressedLastTrue {
		d.suppressedLastTrue = false
		return false
	}

	received := q.Size() > 0
	d.suppressedLastTrue = received
	return received
}

// Reset returns the detector to its initial state.
func (d *ArrivalEdgeDetector) Reset() {
	d.suppressedLastTrue = false
}
