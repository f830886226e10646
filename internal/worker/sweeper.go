package worker

import (
	"context"
	"log/slog"
	"time"

	"seatwise/internal/pkg/config"
	"seatwise/internal/usecase/commands"
)

// Sweeper periodically reclaims expired holds so seats do not stay parked in
// held after their session walks away. The seat map already folds expiry at
// read time; the sweeper is what moves the durable state back to available.
type Sweeper struct {
	inventory *commands.Inventory
	cfg       config.InventoryConfig
	logger    *slog.Logger
	done      chan struct{}
	stopped   chan struct{}
}

func NewSweeper(inventory *commands.Inventory, cfg config.InventoryConfig, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		inventory: inventory,
		cfg:       cfg,
		logger:    logger.With("component", "sweeper"),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) Stop(ctx context.Context) error {
	close(s.done)
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SweepInterval)
	defer cancel()

	targets, err := s.inventory.ListSweepTargets(ctx, s.cfg.SweepBatchSize)
	if err != nil {
		s.logger.Error("failed to list sweep targets", "error", err.Error())
		return
	}
	for _, instanceID := range targets {
		reclaimed, err := s.inventory.ReclaimExpired(ctx, instanceID, s.cfg.SweepBatchSize)
		if err != nil {
			s.logger.Error("reclaim pass failed",
				"instance_id", instanceID, "error", err.Error())
			continue
		}
		if reclaimed > 0 {
			s.logger.Info("reclaimed expired holds",
				"instance_id", instanceID, "count", reclaimed)
		}
	}
}
