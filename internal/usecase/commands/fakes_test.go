//go:build unit

package commands_test

import (
	"context"
	"time"

	"escrowbook/internal/domain/booking"
	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/domain/offering"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"
	"escrowbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// In-memory unit of work: Within runs the closure against fake repositories
// so command flows can be asserted without a database.
type fakeUoW struct {
	tx    *fakeTx
	reads *fakeReads
}

func newFakeUoW() *fakeUoW {
	reads := &fakeReads{}
	return &fakeUoW{
		tx: &fakeTx{
			bookings:  &fakeBookingRepo{},
			escrow:    &fakeEscrowRepo{},
			offerings: &fakeOfferingRepo{},
			cursor:    &fakeCursorRepo{seqs: map[string]int64{}},
			reads:     reads,
		},
		reads: reads,
	}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads { return u.reads }

type fakeTx struct {
	bookings  *fakeBookingRepo
	escrow    *fakeEscrowRepo
	offerings *fakeOfferingRepo
	cursor    *fakeCursorRepo
	reads     *fakeReads
}

func (t *fakeTx) Bookings() shared.BookingRepository   { return t.bookings }
func (t *fakeTx) Escrow() shared.EscrowRepository      { return t.escrow }
func (t *fakeTx) Offerings() shared.OfferingRepository { return t.offerings }
func (t *fakeTx) Cursor() shared.CursorRepository      { return t.cursor }
func (t *fakeTx) Reads() shared.CommandReads           { return t.reads }
func (t *fakeTx) DB() db.DBTX                          { return nil }

type fakeReads struct {
	offering    *offering.Offering
	offeringErr error
	booking     *booking.Booking
	bookingErr  error
	escrow      *escrow.Record
	escrowErr   error
}

func notFound(what string) error {
	return infra.WrapRepoErr(what+" not found", nil, infra.KindNotFound)
}

func (r *fakeReads) OfferingByID(_ context.Context, _ uuid.UUID) (*offering.Offering, error) {
	if r.offeringErr != nil {
		return nil, r.offeringErr
	}
	if r.offering == nil {
		return nil, notFound("offering")
	}
	return r.offering, nil
}

func (r *fakeReads) BookingByID(_ context.Context, _ uuid.UUID) (*booking.Booking, error) {
	if r.bookingErr != nil {
		return nil, r.bookingErr
	}
	if r.booking == nil {
		return nil, notFound("booking")
	}
	return r.booking, nil
}

func (r *fakeReads) EscrowByBooking(_ context.Context, _ uuid.UUID) (*escrow.Record, error) {
	if r.escrowErr != nil {
		return nil, r.escrowErr
	}
	if r.escrow == nil {
		return nil, notFound("escrow record")
	}
	return r.escrow, nil
}

type statusUpdate struct {
	To              booking.Status
	Auto            bool
	ExpectedVersion int64
	At              time.Time
}

type fakeBookingRepo struct {
	created       []*booking.Booking
	createErr     error
	findForUpdate *booking.Booking
	findErr       error
	updates       []statusUpdate
	updateErr     error
	transitions   []*booking.TransitionRecord
	committed     []timeslot.Interval
	committedErr  error
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, b)
	return nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(_ context.Context, _ uuid.UUID) (*booking.Booking, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.findForUpdate == nil {
		return nil, notFound("booking")
	}
	return r.findForUpdate, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, _ uuid.UUID, to booking.Status, auto bool, expectedVersion int64, at time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, statusUpdate{To: to, Auto: auto, ExpectedVersion: expectedVersion, At: at})
	return nil
}

func (r *fakeBookingRepo) AppendTransition(_ context.Context, rec *booking.TransitionRecord) error {
	r.transitions = append(r.transitions, rec)
	return nil
}

func (r *fakeBookingRepo) CommittedWindows(_ context.Context, _ uuid.UUID, _ timeslot.Interval) ([]timeslot.Interval, error) {
	if r.committedErr != nil {
		return nil, r.committedErr
	}
	return r.committed, nil
}

type appliedEvent struct {
	Status  escrow.Status
	EventID string
	Seq     int64
}

type fakeEscrowRepo struct {
	created    []*escrow.Record
	rec        *escrow.Record
	findErr    error
	depositTxs []string
	applied    []appliedEvent
	applyErr   error
}

func (r *fakeEscrowRepo) Create(_ context.Context, rec *escrow.Record) error {
	r.created = append(r.created, rec)
	return nil
}

func (r *fakeEscrowRepo) FindByBooking(_ context.Context, _ uuid.UUID) (*escrow.Record, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.rec == nil {
		return nil, notFound("escrow record")
	}
	return r.rec, nil
}

func (r *fakeEscrowRepo) SetDepositTx(_ context.Context, _ uuid.UUID, txRef string) error {
	r.depositTxs = append(r.depositTxs, txRef)
	return nil
}

func (r *fakeEscrowRepo) ApplyEvent(_ context.Context, _ uuid.UUID, status escrow.Status, eventID string, seq int64, _ time.Time) error {
	if r.applyErr != nil {
		return r.applyErr
	}
	r.applied = append(r.applied, appliedEvent{Status: status, EventID: eventID, Seq: seq})
	return nil
}

type fakeOfferingRepo struct {
	created  []*offering.Offering
	replaced []*offering.Offering
}

func (r *fakeOfferingRepo) Create(_ context.Context, off *offering.Offering) error {
	r.created = append(r.created, off)
	return nil
}

func (r *fakeOfferingRepo) ReplaceSchedule(_ context.Context, off *offering.Offering) error {
	r.replaced = append(r.replaced, off)
	return nil
}

type fakeCursorRepo struct {
	seqs     map[string]int64
	advanced []int64
}

func (r *fakeCursorRepo) Get(_ context.Context, consumer string) (int64, error) {
	return r.seqs[consumer], nil
}

func (r *fakeCursorRepo) Advance(_ context.Context, consumer string, seq int64) error {
	if seq > r.seqs[consumer] {
		r.seqs[consumer] = seq
	}
	r.advanced = append(r.advanced, seq)
	return nil
}
