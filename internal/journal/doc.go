// Package journal keeps a durable record of every message the polling host
// consumes.
//
// The bridge reports each message made current by NextMessage to the
// Journal, which queues it without blocking. Run drains the queue into the
// message_journal SQLite table in small batches. When the queue is full,
// new entries are dropped and counted rather than stalling the host.
//
// Usage:
//
//	repo := journal.NewSQLiteRepository(db.DB)
//	j := journal.New(repo, cfg.Journal.BufferSize)
//	j.SetLogger(logger.With("component", "journal"))
//	adapter.SetObserver(j)
//	go j.Run(ctx)
//
//	recent, err := j.Recent(ctx, 20)
package journal
