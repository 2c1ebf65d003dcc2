package bridge

import (
	"sync"
	"time"
)

// Message is one inbound MQTT message. It is never modified after creation.
type Message struct {
	Topic   string
	Payload string

	// Received is when the adapter accepted the message from the client.
	Received time.Time
}

// MessageQueue is an unbounded FIFO of inbound messages.
//
// Enqueue is called from the client's callback goroutine while the poll loop
// reads and dequeues, so every method takes the queue's lock. There is no
// size limit; the host is expected to drain it under normal operation.
type MessageQueue struct {
	mu    sync.Mutex
	items []Message
}

// Enqueue appends msg to the tail.
func (q *MessageQueue) Enqueue(msg Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// DequeueHead removes and returns the oldest message.
// The boolean is false when the queue is empty.
func (q *MessageQueue) DequeueHead() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Message{}, false
	}

	head := q.items[0]
	q.items[0] = Message{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Release the backing array once drained.
		q.items = nil
	}
	return head, true
}

// Size returns the number of buffered messages.
func (q *MessageQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether no messages are buffered.
func (q *MessageQueue) IsEmpty() bool {
	return q.Size() == 0
}
