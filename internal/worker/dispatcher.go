package worker

import (
	"context"
	"log/slog"
	"time"

	"seatwise/internal/infra/repository"
	"seatwise/internal/pkg/clock"
)

const (
	dispatchInterval  = 2 * time.Second
	dispatchBatchSize = 100
	maxPublishTries   = 5
	publishRetryDelay = 30 * time.Second
)

// EventPublisher is what the dispatcher needs from the amqp layer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Dispatcher drains the notification jobs table and publishes each job to
// the event exchange. Jobs are claimed atomically, so the coordinator's
// transactions never block on broker availability: a broker outage only
// delays delivery.
type Dispatcher struct {
	jobs      *repository.NotificationRepository
	publisher EventPublisher
	clk       clock.Clock
	logger    *slog.Logger
	done      chan struct{}
	stopped   chan struct{}
}

func NewDispatcher(jobs *repository.NotificationRepository, publisher EventPublisher, clk clock.Clock, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:      jobs,
		publisher: publisher,
		clk:       clk,
		logger:    logger.With("component", "dispatcher"),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	go d.run()
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	close(d.done)
	select {
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.stopped)

	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.drain()
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchInterval*2)
	defer cancel()

	now := d.clk.Now()
	jobs, err := d.jobs.ClaimPending(ctx, now, dispatchBatchSize)
	if err != nil {
		d.logger.Error("failed to claim notification jobs", "error", err.Error())
		return
	}

	for _, job := range jobs {
		if err := d.publisher.Publish(ctx, job.Topic, job.Payload); err != nil {
			d.logger.Warn("publish failed, requeueing job",
				"job_id", job.ID, "topic", job.Topic, "attempts", job.Attempts, "error", err.Error())
			retryAt := now.Add(publishRetryDelay)
			if reqErr := d.jobs.Requeue(ctx, job.ID, err.Error(), maxPublishTries, retryAt); reqErr != nil {
				d.logger.Error("failed to requeue notification job",
					"job_id", job.ID, "error", reqErr.Error())
			}
			continue
		}
		d.logger.Debug("published seat event", "job_id", job.ID, "topic", job.Topic)
	}
}
