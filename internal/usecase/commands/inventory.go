package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/pkg/clock"
	"seatwise/internal/pkg/config"
	"seatwise/internal/pkg/errs"
	"seatwise/internal/usecase/shared"

	"github.com/google/uuid"
)

// Notification topics written to the jobs table and published by the
// dispatcher worker.
const (
	TopicSeatHeld       = "seat.held"
	TopicSeatReleased   = "seat.released"
	TopicSeatSold       = "seat.sold"
	TopicSeatReclaimed  = "seat.reclaimed"
	TopicSeatsBlocked   = "seats.blocked"
	TopicSeatsUnblocked = "seats.unblocked"
)

type HoldInput struct {
	InstanceID uuid.UUID
	SeatUID    string
	SessionID  string
	// TTL of zero means the configured default; values above the configured
	// maximum are clamped.
	TTL time.Duration
}

type HoldGroupInput struct {
	InstanceID uuid.UUID
	SeatUIDs   []string
	SessionID  string
	TTL        time.Duration
}

type ExtendInput struct {
	InstanceID uuid.UUID
	SeatUID    string
	SessionID  string
	TTL        time.Duration
}

type ReleaseInput struct {
	InstanceID uuid.UUID
	SeatUID    string
	SessionID  string
}

type ConfirmInput struct {
	InstanceID uuid.UUID
	SeatUID    string
	SessionID  string
	OrderRef   uuid.UUID
}

type HoldResult struct {
	SeatUID   string
	Version   int32
	ExpiresAt time.Time
}

type ConfirmResult struct {
	SeatUID  string
	Version  int32
	OrderRef uuid.UUID
}

// Inventory coordinates every seat state transition. Each public method runs
// inside one UnitOfWork transaction; nothing here performs network I/O, and
// outbound events are enqueued to the jobs table within the same transaction.
type Inventory struct {
	uow shared.UnitOfWork
	clk clock.Clock
	cfg config.InventoryConfig
}

func NewInventory(uow shared.UnitOfWork, clk clock.Clock, cfg config.InventoryConfig) *Inventory {
	return &Inventory{uow: uow, clk: clk, cfg: cfg}
}

func (c *Inventory) resolveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.cfg.DefaultHoldTTL
	}
	if ttl > c.cfg.MaxHoldTTL {
		ttl = c.cfg.MaxHoldTTL
	}
	return ttl
}

// Hold claims one seat for the session until the hold expires. A repeat hold
// by the same session on its own live hold refreshes the expiry instead of
// failing. A seat under an expired hold is reclaimed inline and then claimed,
// all inside the same transaction.
func (c *Inventory) Hold(ctx context.Context, in HoldInput) (*HoldResult, error) {
	if in.SessionID == "" {
		return nil, ErrSessionRequired
	}
	now := c.clk.Now()
	expiresAt := now.Add(c.resolveTTL(in.TTL))

	var result *HoldResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := c.holdOne(ctx, tx, in.InstanceID, in.SeatUID, in.SessionID, expiresAt, now)
		if err != nil {
			return err
		}
		result = r
		return enqueueSeatEvent(ctx, tx, TopicSeatHeld, in.InstanceID, []string{in.SeatUID}, in.SessionID, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HoldGroup claims every listed seat or none of them. The first seat that
// cannot be claimed aborts the transaction and is reported along with the
// reason.
func (c *Inventory) HoldGroup(ctx context.Context, in HoldGroupInput) ([]HoldResult, error) {
	if in.SessionID == "" {
		return nil, ErrSessionRequired
	}
	if len(in.SeatUIDs) == 0 {
		return nil, nil
	}
	if len(in.SeatUIDs) > c.cfg.MaxGroupSize {
		return nil, ErrTooManySeats
	}
	now := c.clk.Now()
	expiresAt := now.Add(c.resolveTTL(in.TTL))

	var results []HoldResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		results = results[:0]
		for _, uid := range in.SeatUIDs {
			r, err := c.holdOne(ctx, tx, in.InstanceID, uid, in.SessionID, expiresAt, now)
			if err != nil {
				return &HoldGroupFailedError{SeatUID: uid, Cause: err}
			}
			results = append(results, *r)
		}
		return enqueueSeatEvent(ctx, tx, TopicSeatHeld, in.InstanceID, in.SeatUIDs, in.SessionID, now)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// holdOne is the single-seat hold primitive shared by Hold and HoldGroup. It
// must run inside an open transaction.
func (c *Inventory) holdOne(
	ctx context.Context,
	tx shared.Tx,
	instanceID uuid.UUID,
	seatUID, sessionID string,
	expiresAt, now time.Time,
) (*HoldResult, error) {
	seat, err := findSeat(ctx, tx, instanceID, seatUID)
	if err != nil {
		return nil, err
	}
	hold, err := tx.Holds().Find(ctx, instanceID, seatUID)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	// Same session re-holding its own live seat: refresh the expiry, keep the
	// version as is. No transition happens.
	if seat.Status() == seating.StatusHeld && hold != nil && !hold.ExpiredAt(now) && hold.OwnedBy(sessionID) {
		affected, err := tx.Holds().ExtendExpiry(ctx, instanceID, seatUID, sessionID, expiresAt, now)
		if err != nil {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
		if affected == 0 {
			return nil, ErrVersionConflict
		}
		return &HoldResult{SeatUID: seatUID, Version: seat.Version(), ExpiresAt: expiresAt}, nil
	}

	if err := seat.CheckHoldable(hold, now); err != nil {
		return nil, err
	}

	expected := seat.Version()
	if seat.Status() == seating.StatusHeld {
		// Expired or orphaned hold: reclaim first. Two discrete transitions,
		// each advancing the version by 1.
		if _, err := tx.Holds().Delete(ctx, instanceID, seatUID, ""); err != nil {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
		affected, err := tx.Seats().UpdateStatusCAS(ctx, instanceID, seatUID, expected, seating.StatusAvailable, nil)
		if err != nil {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
		if affected == 0 {
			return nil, ErrVersionConflict
		}
		expected++
	}

	affected, err := tx.Seats().UpdateStatusCAS(ctx, instanceID, seatUID, expected, seating.StatusHeld, nil)
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	if affected == 0 {
		return nil, ErrVersionConflict
	}

	if err := tx.Holds().Insert(ctx, seating.NewHold(instanceID, seatUID, sessionID, expiresAt)); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// Another session slipped its hold row in first.
			return nil, seating.ErrSeatUnavailable
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	return &HoldResult{SeatUID: seatUID, Version: expected + 1, ExpiresAt: expiresAt}, nil
}

// Extend pushes the expiry of the caller's own live hold forward. The seat
// version does not change: extending is not a transition.
func (c *Inventory) Extend(ctx context.Context, in ExtendInput) (*HoldResult, error) {
	if in.SessionID == "" {
		return nil, ErrSessionRequired
	}
	now := c.clk.Now()
	expiresAt := now.Add(c.resolveTTL(in.TTL))

	var result *HoldResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		seat, err := findSeat(ctx, tx, in.InstanceID, in.SeatUID)
		if err != nil {
			return err
		}
		hold, err := tx.Holds().Find(ctx, in.InstanceID, in.SeatUID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if hold == nil || hold.ExpiredAt(now) {
			return seating.ErrHoldExpired
		}
		if !hold.OwnedBy(in.SessionID) {
			return seating.ErrHoldNotOwned
		}
		affected, err := tx.Holds().ExtendExpiry(ctx, in.InstanceID, in.SeatUID, in.SessionID, expiresAt, now)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if affected == 0 {
			return seating.ErrHoldExpired
		}
		result = &HoldResult{SeatUID: in.SeatUID, Version: seat.Version(), ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Release gives the seat back. Releasing a seat the session does not hold is
// a no-op so clients can retry freely; only a live hold owned by another
// session is rejected. An expired hold found along the way is reclaimed.
func (c *Inventory) Release(ctx context.Context, in ReleaseInput) error {
	if in.SessionID == "" {
		return ErrSessionRequired
	}
	now := c.clk.Now()

	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		seat, err := findSeat(ctx, tx, in.InstanceID, in.SeatUID)
		if err != nil {
			return err
		}
		hold, err := tx.Holds().Find(ctx, in.InstanceID, in.SeatUID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		if seat.Status() != seating.StatusHeld {
			// Nothing to release. A leftover hold row on a non-held seat is
			// removed on the way out.
			if hold != nil {
				if _, err := tx.Holds().Delete(ctx, in.InstanceID, in.SeatUID, ""); err != nil {
					return errs.Mark(err, ErrStorageFailure)
				}
			}
			return nil
		}

		owned := hold != nil && hold.OwnedBy(in.SessionID)
		if hold != nil && !hold.ExpiredAt(now) && !owned {
			return seating.ErrHoldNotOwned
		}

		if _, err := tx.Holds().Delete(ctx, in.InstanceID, in.SeatUID, ""); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		affected, err := tx.Seats().UpdateStatusCAS(ctx, in.InstanceID, in.SeatUID, seat.Version(), seating.StatusAvailable, nil)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if affected == 0 {
			return ErrVersionConflict
		}

		if owned && !hold.ExpiredAt(now) {
			return enqueueSeatEvent(ctx, tx, TopicSeatReleased, in.InstanceID, []string{in.SeatUID}, in.SessionID, now)
		}
		return enqueueSeatEvent(ctx, tx, TopicSeatReclaimed, in.InstanceID, []string{in.SeatUID}, "", now)
	})
}

// Confirm converts the caller's live hold into a sale tagged with orderRef.
// A repeat confirm carrying the orderRef already on the seat succeeds without
// writing anything, so order finalization can retry.
func (c *Inventory) Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	if in.SessionID == "" {
		return nil, ErrSessionRequired
	}
	now := c.clk.Now()

	var result *ConfirmResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		seat, err := findSeat(ctx, tx, in.InstanceID, in.SeatUID)
		if err != nil {
			return err
		}
		if seat.IsSoldWith(in.OrderRef) {
			result = &ConfirmResult{SeatUID: in.SeatUID, Version: seat.Version(), OrderRef: in.OrderRef}
			return nil
		}
		hold, err := tx.Holds().Find(ctx, in.InstanceID, in.SeatUID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if err := seat.CheckConfirmable(hold, in.SessionID, in.OrderRef, now); err != nil {
			return err
		}

		if _, err := tx.Holds().Delete(ctx, in.InstanceID, in.SeatUID, in.SessionID); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		orderRef := in.OrderRef
		affected, err := tx.Seats().UpdateStatusCAS(ctx, in.InstanceID, in.SeatUID, seat.Version(), seating.StatusSold, &orderRef)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if affected == 0 {
			return ErrVersionConflict
		}
		result = &ConfirmResult{SeatUID: in.SeatUID, Version: seat.Version() + 1, OrderRef: in.OrderRef}
		return enqueueSeatEvent(ctx, tx, TopicSeatSold, in.InstanceID, []string{in.SeatUID}, in.SessionID, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReclaimExpired sweeps up to limit expired holds on the instance and returns
// them to available. A seat whose version moved underneath the sweep is
// skipped and left for the next pass; the sweep never fails the batch over
// one seat.
func (c *Inventory) ReclaimExpired(ctx context.Context, instanceID uuid.UUID, limit int) (int, error) {
	if limit <= 0 {
		limit = c.cfg.SweepBatchSize
	}
	now := c.clk.Now()

	reclaimed := 0
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reclaimed = 0
		holds, err := tx.Holds().ListExpired(ctx, instanceID, now, limit)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		var uids []string
		for _, h := range holds {
			affected, err := tx.Holds().Delete(ctx, instanceID, h.SeatUID(), "")
			if err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
			if affected == 0 {
				continue
			}
			seat, err := tx.Seats().Find(ctx, instanceID, h.SeatUID())
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					continue
				}
				return errs.Mark(err, ErrStorageFailure)
			}
			if seat.Status() != seating.StatusHeld {
				continue
			}
			affected, err = tx.Seats().UpdateStatusCAS(ctx, instanceID, h.SeatUID(), seat.Version(), seating.StatusAvailable, nil)
			if err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
			if affected == 0 {
				slog.DebugContext(ctx, "reclaim skipped: seat version moved",
					"instance_id", instanceID, "seat_uid", h.SeatUID())
				continue
			}
			reclaimed++
			uids = append(uids, h.SeatUID())
		}

		if len(uids) > 0 {
			return enqueueSeatEvent(ctx, tx, TopicSeatReclaimed, instanceID, uids, "", now)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reclaimed, nil
}

// ListSweepTargets returns instance ids that currently carry expired holds,
// for the background sweeper to iterate.
func (c *Inventory) ListSweepTargets(ctx context.Context, limit int) ([]uuid.UUID, error) {
	now := c.clk.Now()
	var ids []uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Holds().ListInstancesWithExpired(ctx, now, limit)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func findSeat(ctx context.Context, tx shared.Tx, instanceID uuid.UUID, seatUID string) (*seating.Seat, error) {
	seat, err := tx.Seats().Find(ctx, instanceID, seatUID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSeatNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	return seat, nil
}

type seatEventPayload struct {
	InstanceID uuid.UUID `json:"instance_id"`
	SeatUIDs   []string  `json:"seat_uids"`
	SessionID  string    `json:"session_id,omitempty"`
	At         time.Time `json:"at"`
}

func enqueueSeatEvent(
	ctx context.Context,
	tx shared.Tx,
	topic string,
	instanceID uuid.UUID,
	seatUIDs []string,
	sessionID string,
	at time.Time,
) error {
	payload, err := json.Marshal(seatEventPayload{
		InstanceID: instanceID,
		SeatUIDs:   seatUIDs,
		SessionID:  sessionID,
		At:         at,
	})
	if err != nil {
		return errs.Wrap(err, "failed to marshal seat event payload")
	}
	if err := tx.Notifications().CreateJob(ctx, "amqp", topic, payload, at); err != nil {
		return errs.Mark(err, ErrStorageFailure)
	}
	return nil
}
