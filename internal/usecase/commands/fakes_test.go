//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"seatwise/internal/domain/design"
	"seatwise/internal/domain/seating"
	"seatwise/internal/infra"
	"seatwise/internal/usecase/shared"

	"github.com/google/uuid"
)

// The fakes below emulate the postgres-backed unit of work in memory.
// Transactions are serialized by a mutex and roll back by restoring a
// snapshot of the state, which is enough to exercise the coordinator's
// version CAS and hold ledger semantics, including goroutines racing for
// the same seat.

type seatKey struct {
	instanceID uuid.UUID
	uid        string
}

type enqueuedJob struct {
	kind    string
	topic   string
	payload []byte
	runAt   time.Time
}

type fakeState struct {
	seats     map[seatKey]*seating.Seat
	holds     map[seatKey]*seating.Hold
	instances map[uuid.UUID]*seating.Instance
	designs   map[uuid.UUID]*design.SeatingDesign
	jobs      []enqueuedJob
}

func newFakeState() *fakeState {
	return &fakeState{
		seats:     make(map[seatKey]*seating.Seat),
		holds:     make(map[seatKey]*seating.Hold),
		instances: make(map[uuid.UUID]*seating.Instance),
		designs:   make(map[uuid.UUID]*design.SeatingDesign),
	}
}

func (s *fakeState) clone() *fakeState {
	c := newFakeState()
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.holds {
		c.holds[k] = v
	}
	for k, v := range s.instances {
		c.instances[k] = v
	}
	for k, v := range s.designs {
		c.designs[k] = v
	}
	c.jobs = append(c.jobs, s.jobs...)
	return c
}

type fakeUoW struct {
	mu    sync.Mutex
	state *fakeState

	// onFindSeat runs inside the transaction before a seat is returned,
	// letting tests inject a concurrent modification between read and CAS.
	onFindSeat func(s *fakeState, key seatKey)
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{state: newFakeState()}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapshot := u.state.clone()
	err := fn(ctx, &fakeTx{uow: u})
	if err != nil {
		u.state = snapshot
		return err
	}
	return nil
}

// seat reads outside any transaction, for assertions.
func (u *fakeUoW) seat(instanceID uuid.UUID, uid string) *seating.Seat {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.seats[seatKey{instanceID, uid}]
}

func (u *fakeUoW) hold(instanceID uuid.UUID, uid string) *seating.Hold {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.holds[seatKey{instanceID, uid}]
}

func (u *fakeUoW) instance(id uuid.UUID) *seating.Instance {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.instances[id]
}

func (u *fakeUoW) enqueuedTopics() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	topics := make([]string, 0, len(u.state.jobs))
	for _, j := range u.state.jobs {
		topics = append(topics, j.topic)
	}
	return topics
}

func (u *fakeUoW) putSeat(s *seating.Seat) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.seats[seatKey{s.InstanceID(), s.UID()}] = s
}

func (u *fakeUoW) putHold(h *seating.Hold) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.holds[seatKey{h.InstanceID(), h.SeatUID()}] = h
}

func (u *fakeUoW) putInstance(i *seating.Instance) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.instances[i.ID()] = i
}

func (u *fakeUoW) putDesign(d *design.SeatingDesign) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.designs[d.ID()] = d
}

type fakeTx struct {
	uow *fakeUoW
}

func (t *fakeTx) Seats() shared.SeatRepository                 { return &fakeSeatRepo{t.uow} }
func (t *fakeTx) Holds() shared.HoldRepository                 { return &fakeHoldRepo{t.uow} }
func (t *fakeTx) Instances() shared.InstanceRepository         { return &fakeInstanceRepo{t.uow} }
func (t *fakeTx) Designs() shared.DesignRepository             { return &fakeDesignRepo{t.uow} }
func (t *fakeTx) Notifications() shared.NotificationRepository { return &fakeNotificationRepo{t.uow} }

type fakeSeatRepo struct {
	uow *fakeUoW
}

func (r *fakeSeatRepo) Find(_ context.Context, instanceID uuid.UUID, seatUID string) (*seating.Seat, error) {
	key := seatKey{instanceID, seatUID}
	seat, ok := r.uow.state.seats[key]
	if !ok {
		return nil, infra.WrapRepoErr("seat not found", nil, infra.KindNotFound)
	}
	// The hook runs after the read, so a test can move the stored seat and
	// leave the caller holding a stale version.
	if r.uow.onFindSeat != nil {
		r.uow.onFindSeat(r.uow.state, key)
	}
	return seat, nil
}

func (r *fakeSeatRepo) InsertBulk(_ context.Context, seats []*seating.Seat) (int64, error) {
	for _, s := range seats {
		r.uow.state.seats[seatKey{s.InstanceID(), s.UID()}] = s
	}
	return int64(len(seats)), nil
}

func (r *fakeSeatRepo) CountByInstance(_ context.Context, instanceID uuid.UUID) (int64, error) {
	var n int64
	for k := range r.uow.state.seats {
		if k.instanceID == instanceID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSeatRepo) UpdateStatusCAS(_ context.Context, instanceID uuid.UUID, seatUID string, expectedVersion int32, status seating.SeatStatus, orderRef *uuid.UUID) (int64, error) {
	key := seatKey{instanceID, seatUID}
	seat, ok := r.uow.state.seats[key]
	if !ok || seat.Version() != expectedVersion {
		return 0, nil
	}
	r.uow.state.seats[key] = seating.ReconstructSeat(
		seat.InstanceID(), seat.UID(), seat.SectionCode(), seat.RowLabel(), seat.Number(),
		seat.PriceTierID(), seat.PriceOverride(),
		status, seat.Version()+1, orderRef, seat.UpdatedAt(),
	)
	return 1, nil
}

func (r *fakeSeatRepo) UpdateStatusWhere(_ context.Context, instanceID uuid.UUID, seatUIDs []string, from, to seating.SeatStatus) (int64, error) {
	wanted := make(map[string]bool, len(seatUIDs))
	for _, uid := range seatUIDs {
		wanted[uid] = true
	}
	var moved int64
	for k, seat := range r.uow.state.seats {
		if k.instanceID != instanceID || seat.Status() != from {
			continue
		}
		if len(seatUIDs) > 0 && !wanted[k.uid] {
			continue
		}
		r.uow.state.seats[k] = seating.ReconstructSeat(
			seat.InstanceID(), seat.UID(), seat.SectionCode(), seat.RowLabel(), seat.Number(),
			seat.PriceTierID(), seat.PriceOverride(),
			to, seat.Version()+1, seat.OrderRef(), seat.UpdatedAt(),
		)
		moved++
	}
	return moved, nil
}

type fakeHoldRepo struct {
	uow *fakeUoW
}

func (r *fakeHoldRepo) Find(_ context.Context, instanceID uuid.UUID, seatUID string) (*seating.Hold, error) {
	return r.uow.state.holds[seatKey{instanceID, seatUID}], nil
}

func (r *fakeHoldRepo) Insert(_ context.Context, hold *seating.Hold) error {
	key := seatKey{hold.InstanceID(), hold.SeatUID()}
	if _, exists := r.uow.state.holds[key]; exists {
		return infra.WrapRepoErr("hold already exists", nil, infra.KindDuplicateKey)
	}
	r.uow.state.holds[key] = hold
	return nil
}

func (r *fakeHoldRepo) Delete(_ context.Context, instanceID uuid.UUID, seatUID string, sessionID string) (int64, error) {
	key := seatKey{instanceID, seatUID}
	hold, exists := r.uow.state.holds[key]
	if !exists {
		return 0, nil
	}
	if sessionID != "" && hold.SessionID() != sessionID {
		return 0, nil
	}
	delete(r.uow.state.holds, key)
	return 1, nil
}

func (r *fakeHoldRepo) ExtendExpiry(_ context.Context, instanceID uuid.UUID, seatUID, sessionID string, expiresAt, now time.Time) (int64, error) {
	key := seatKey{instanceID, seatUID}
	hold, exists := r.uow.state.holds[key]
	if !exists || hold.SessionID() != sessionID || hold.ExpiredAt(now) {
		return 0, nil
	}
	r.uow.state.holds[key] = seating.ReconstructHold(instanceID, seatUID, sessionID, expiresAt, hold.CreatedAt())
	return 1, nil
}

func (r *fakeHoldRepo) ListExpired(_ context.Context, instanceID uuid.UUID, now time.Time, limit int) ([]*seating.Hold, error) {
	var expired []*seating.Hold
	for k, h := range r.uow.state.holds {
		if k.instanceID == instanceID && h.ExpiredAt(now) {
			expired = append(expired, h)
			if len(expired) == limit {
				break
			}
		}
	}
	return expired, nil
}

func (r *fakeHoldRepo) ListInstancesWithExpired(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for k, h := range r.uow.state.holds {
		if h.ExpiredAt(now) && !seen[k.instanceID] {
			seen[k.instanceID] = true
			ids = append(ids, k.instanceID)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

type fakeInstanceRepo struct {
	uow *fakeUoW
}

func (r *fakeInstanceRepo) Find(_ context.Context, id uuid.UUID) (*seating.Instance, error) {
	instance, ok := r.uow.state.instances[id]
	if !ok {
		return nil, infra.WrapRepoErr("instance not found", nil, infra.KindNotFound)
	}
	return instance, nil
}

func (r *fakeInstanceRepo) Insert(_ context.Context, instance *seating.Instance) error {
	for _, existing := range r.uow.state.instances {
		if existing.EventID() == instance.EventID() {
			return infra.WrapRepoErr("event already has an instance", nil, infra.KindDuplicateKey)
		}
	}
	r.uow.state.instances[instance.ID()] = instance
	return nil
}

func (r *fakeInstanceRepo) SetArchived(_ context.Context, id uuid.UUID, at time.Time) error {
	instance, ok := r.uow.state.instances[id]
	if !ok {
		return infra.WrapRepoErr("instance not found", nil, infra.KindNotFound)
	}
	archivedAt := at
	r.uow.state.instances[id] = seating.ReconstructInstance(
		instance.ID(), instance.EventID(), instance.DesignID(),
		instance.DesignVersion(), instance.Geometry(), seating.InstanceArchived,
		instance.PublishedAt(), &archivedAt,
		instance.CreatedAt(), instance.UpdatedAt(),
	)
	return nil
}

func (r *fakeInstanceRepo) UpdateGeometry(_ context.Context, id uuid.UUID, geometry *design.GeometryTree) error {
	instance, ok := r.uow.state.instances[id]
	if !ok {
		return infra.WrapRepoErr("instance not found", nil, infra.KindNotFound)
	}
	updated := seating.ReconstructInstance(
		instance.ID(), instance.EventID(), instance.DesignID(),
		geometry.DesignVersion, geometry, instance.Status(),
		instance.PublishedAt(), instance.ArchivedAt(),
		instance.CreatedAt(), instance.UpdatedAt(),
	)
	r.uow.state.instances[id] = updated
	return nil
}

type fakeDesignRepo struct {
	uow *fakeUoW
}

func (r *fakeDesignRepo) Find(_ context.Context, id uuid.UUID) (*design.SeatingDesign, error) {
	d, ok := r.uow.state.designs[id]
	if !ok {
		return nil, infra.WrapRepoErr("design not found", nil, infra.KindNotFound)
	}
	return d, nil
}

func (r *fakeDesignRepo) Insert(_ context.Context, d *design.SeatingDesign) error {
	r.uow.state.designs[d.ID()] = d
	return nil
}

type fakeNotificationRepo struct {
	uow *fakeUoW
}

func (r *fakeNotificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.uow.state.jobs = append(r.uow.state.jobs, enqueuedJob{kind: kind, topic: topic, payload: payload, runAt: runAt})
	return nil
}
