package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nerrad567/mqtt-tickbridge/internal/bridge"
)

const (
	// DefaultBufferSize is used when New is given a non-positive size.
	DefaultBufferSize = 256

	// maxBatch bounds how many entries go into one transaction.
	maxBatch = 64

	// drainTimeout bounds the final flush after Run's context ends.
	drainTimeout = 5 * time.Second
)

var _ bridge.DeliveryObserver = (*Journal)(nil)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Journal buffers consumed messages and writes them to a Repository.
//
// Thread Safety:
//   - Record and Delivered are safe from any goroutine and never block.
//   - Run must be called at most once.
type Journal struct {
	repo    Repository
	pending chan Entry
	now     func() time.Time
	logger  Logger

	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64

	// warnedFull limits the "buffer full" warning to once per fill-up.
	warnedFull atomic.Bool
}

// New creates a journal with room for bufferSize unwritten entries.
func New(repo Repository, bufferSize int) *Journal {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Journal{
		repo:    repo,
		pending: make(chan Entry, bufferSize),
		now:     time.Now,
	}
}

// SetLogger sets a logger for dropped entries and write failures.
// Call before Run.
func (j *Journal) SetLogger(logger Logger) {
	j.logger = logger
}

// Delivered implements bridge.DeliveryObserver.
func (j *Journal) Delivered(msg bridge.Message) {
	j.Record(msg)
}

// Record queues msg for writing. When the buffer is full the entry is
// dropped and counted.
func (j *Journal) Record(msg bridge.Message) {
	entry := Entry{
		Topic:       msg.Topic,
		Payload:     msg.Payload,
		ReceivedAt:  msg.Received,
		DeliveredAt: j.now(),
	}
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = entry.DeliveredAt
	}

	select {
	case j.pending <- entry:
		j.warnedFull.Store(false)
	default:
		j.dropped.Add(1)
		if j.logger != nil && j.warnedFull.CompareAndSwap(false, true) {
			j.logger.Warn("journal buffer full, dropping entries",
				"capacity", cap(j.pending),
				"topic", msg.Topic,
			)
		}
	}
}

// Run writes queued entries until ctx is done, then flushes what is left.
// It always returns nil so it can run under an errgroup without stopping
// its siblings on a database error.
func (j *Journal) Run(ctx context.Context) error {
	batch := make([]Entry, 0, maxBatch)

	for {
		select {
		case <-ctx.Done():
			j.drain(batch)
			return nil
		case entry := <-j.pending:
			batch = append(batch[:0], entry)
			batch = j.collect(batch)
			j.write(ctx, batch)
		}
	}
}

// collect appends whatever is already queued, up to maxBatch.
func (j *Journal) collect(batch []Entry) []Entry {
	for len(batch) < maxBatch {
		select {
		case entry := <-j.pending:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
	return batch
}

// drain flushes the queue after shutdown with a fresh deadline.
func (j *Journal) drain(batch []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		batch = j.collect(batch[:0])
		if len(batch) == 0 {
			return
		}
		j.write(ctx, batch)
	}
}

func (j *Journal) write(ctx context.Context, batch []Entry) {
	if err := j.repo.Insert(ctx, batch); err != nil {
		j.failed.Add(uint64(len(batch)))
		if j.logger != nil {
			j.logger.Error("journal write failed", "entries", len(batch), "error", err)
		}
		return
	}
	j.written.Add(uint64(len(batch)))
}

// Recent returns up to limit entries, newest first. See Repository.Recent.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.repo.Recent(ctx, clampLimit(limit))
}

// Stats returns write counters and the current queue length.
func (j *Journal) Stats() Stats {
	return Stats{
		Written: j.written.Load(),
		Dropped: j.dropped.Load(),
		Failed:  j.failed.Load(),
		Pending: len(j.pending),
	}
}
