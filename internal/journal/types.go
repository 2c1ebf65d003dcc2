package journal

import "time"

// Entry is one consumed message.
type Entry struct {
	ID          int64     `json:"id"`
	Topic       string    `json:"topic"`
	Payload     string    `json:"payload"`
	ReceivedAt  time.Time `json:"received_at"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Stats counts journal activity since the journal was created.
type Stats struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
	Pending int    `json:"pending"`
}
