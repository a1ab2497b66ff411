package retry

import (
	"context"
	"log/slog"
	"time"

	"municipal/internal/payment/metrics"
	"municipal/internal/payment/models"
	"municipal/internal/payment/ports"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/requestcontext"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultBatchSize    = 20

	requeueTimeout = 5 * time.Second
)

// Payer re-runs a payment attempt.
type Payer interface {
	Pay(ctx context.Context, req models.Request) (*models.Outcome, error)
}

// Worker polls the retry queue and re-runs due payments. A retry that fails
// with an error (the target was paid meanwhile, or no longer exists) is
// logged and dropped; a declined retry is rescheduled by the payer itself.
// Claimed directives that never ran to completion, because the worker is
// shutting down or the attempt timed out, go back on the queue.
type Worker struct {
	queue    ports.RetryQueue
	payer    Payer
	interval time.Duration
	batch    int
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type WorkerOption func(*Worker)

func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		w.now = now
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func NewWorker(queue ports.RetryQueue, payer Payer, opts ...WorkerOption) *Worker {
	w := &Worker{
		queue:    queue,
		payer:    payer,
		interval: DefaultPollInterval,
		batch:    DefaultBatchSize,
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is done. It returns nil on shutdown.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.WarnContext(ctx, "retry poll failed", "error", err)
			}
		}
	}
}

// RunOnce claims one batch of due directives and runs them. It returns how
// many were attempted. When ctx ends mid-batch the rest of the batch is put
// back and ctx's error returned.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.now()
	due, err := w.queue.Due(ctx, now, w.batch)
	if err != nil {
		return 0, err
	}
	for i, d := range due {
		if err := ctx.Err(); err != nil {
			w.requeue(ctx, due[i:])
			return i, err
		}
		w.run(requestcontext.WithTime(ctx, now), d)
	}
	return len(due), nil
}

func (w *Worker) run(ctx context.Context, d models.RetryDirective) {
	outcome, err := w.payer.Pay(ctx, d.Request)
	switch {
	case err != nil && (dErrors.HasCode(err, dErrors.CodeTimeout) || ctx.Err() != nil):
		w.requeue(ctx, []models.RetryDirective{d})
	case err != nil:
		w.count("dropped")
		w.logger.WarnContext(ctx, "payment retry dropped",
			"subject", d.Request.Subject(),
			"attempt", d.Request.Attempt,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
	case outcome.Success:
		w.count("approved")
		w.logger.InfoContext(ctx, "payment retry approved",
			"subject", d.Request.Subject(),
			"attempt", d.Request.Attempt,
			"receipt_id", outcome.ReceiptID,
		)
	default:
		w.count("declined")
		w.logger.InfoContext(ctx, "payment retry declined",
			"subject", d.Request.Subject(),
			"attempt", d.Request.Attempt,
			"rescheduled", outcome.RetryScheduled,
		)
	}
}

// requeue puts unfinished directives back on the queue. It usually runs
// during shutdown, so it does not inherit ctx's cancellation.
func (w *Worker) requeue(ctx context.Context, pending []models.RetryDirective) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()
	for _, d := range pending {
		if err := w.queue.Schedule(ctx, d); err != nil {
			w.count("lost")
			w.logger.ErrorContext(ctx, "failed to requeue payment retry",
				"subject", d.Request.Subject(),
				"attempt", d.Request.Attempt,
				"error", err,
			)
			continue
		}
		w.count("requeued")
	}
}

func (w *Worker) count(result string) {
	if w.metrics != nil {
		w.metrics.IncrementRetryProcessed(result)
	}
}
