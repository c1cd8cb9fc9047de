package cabinet

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Laksmack/kenaz-sub003/internal/index"
)

// ErrQueueFull is returned when the job buffer is at capacity; the document
// stays pending and a later reprocess sweep picks it up.
var ErrQueueFull = errors.New("extraction queue full")

// JobRunner is the extraction strategy the worker invokes per document.
type JobRunner interface {
	Extract(ctx context.Context, relPath string) (text string, pageCount int, err error)
}

// Queue is a single-consumer FIFO of vault-relative paths. Exactly one
// extraction job runs at a time; the worker owns the queue state, so there
// is no shared busy flag to race on. The queue deliberately does not
// deduplicate: a second enqueue of the same path signals changed content.
type Queue struct {
	store  index.Store
	runner JobRunner
	logger *slog.Logger

	jobs chan string
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue(store index.Store, runner JobRunner, capacity int, logger *slog.Logger) *Queue {
	if capacity <= 0 {
		capacity = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		store:  store,
		runner: runner,
		logger: logger.With("component", "queue"),
		jobs:   make(chan string, capacity),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. It drains jobs until Close is called
// or the context is cancelled.
func (q *Queue) Start(ctx context.Context) {
	go q.worker(ctx)
}

// Enqueue registers a document as pending and appends it to the queue.
// Unsupported types are rejected before queuing.
func (q *Queue) Enqueue(ctx context.Context, relPath string) error {
	if _, err := Classify(relPath); err != nil {
		return err
	}
	if err := q.store.Upsert(ctx, relPath); err != nil {
		return err
	}
	return q.send(relPath)
}

// ReprocessPending re-queues every document still in pending state. Failed
// documents are never swept back in; they require manual intervention.
func (q *Queue) ReprocessPending(ctx context.Context) (int, error) {
	paths, err := q.store.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, p := range paths {
		if err := q.send(p); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// Close stops accepting jobs and waits for the worker to drain the buffer.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) send(relPath string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("queue is closed")
	}
	select {
	case q.jobs <- relPath:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case relPath, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, relPath)
		}
	}
}

// process runs one job to completion. Errors are swallowed at the document
// boundary and recorded as failed status; the queue must keep draining.
func (q *Queue) process(ctx context.Context, relPath string) {
	if err := q.store.SetProcessing(ctx, relPath); err != nil {
		q.logger.Error("failed to mark document processing", "path", relPath, "error", err)
	}

	text, pages, err := q.runner.Extract(ctx, relPath)
	if err != nil {
		q.logger.Warn("extraction failed", "path", relPath, "error", err)
		if serr := q.store.SetFailed(ctx, relPath, err); serr != nil {
			q.logger.Error("failed to record failure", "path", relPath, "error", serr)
		}
		return
	}

	if err := q.store.SetDone(ctx, relPath, text, pages); err != nil {
		q.logger.Error("failed to persist extraction", "path", relPath, "error", err)
		return
	}
	q.logger.Info("document extracted", "path", relPath, "chars", len(text), "pages", pages)
}
