package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mgcampos/campus-portal-api/pkg/jobs"
	"github.com/mgcampos/campus-portal-api/pkg/mail"
)

// MailDispatcher pushes outbound email through a background worker queue so
// delivery latency and failures never reach the request path.
type MailDispatcher struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMailDispatcher wires a mailer behind a retrying worker queue.
func NewMailDispatcher(mailer mail.Mailer, workers int, metrics *MetricsService, logger *zap.Logger) *MailDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mail.Message)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return mailer.Send(ctx, msg)
	}
	queue := jobs.NewQueue("mail", handler, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return &MailDispatcher{queue: queue, metrics: metrics, logger: logger}
}

// Start launches the worker pool.
func (d *MailDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the worker pool.
func (d *MailDispatcher) Stop() {
	d.queue.Stop()
}

// Enqueue schedules a message for delivery.
func (d *MailDispatcher) Enqueue(msg mail.Message) error {
	if err := d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "mail.send",
		Payload: msg,
	}); err != nil {
		return err
	}
	d.metrics.RecordMailEnqueued()
	return nil
}
