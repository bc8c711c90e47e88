package queries

import (
	"context"
	"time"

	"escrowbook/internal/domain/offering"
	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra"
	"escrowbook/internal/pkg/clock"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type AvailabilityQueries interface {
	// Month returns the per-day rollup for an offering's month in its own
	// timezone, cached until the next committed-status change.
	Month(ctx context.Context, offeringID uuid.UUID, year int, month time.Month) (*MonthAvailability, error)
	// Day enumerates the concrete slots of one local date.
	Day(ctx context.Context, offeringID uuid.UUID, date string) (*DayAvailability, error)
}

type OfferingReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*offering.Offering, error)
}

type BlockedWindowReader interface {
	CommittedWindows(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) ([]timeslot.Interval, error)
}

type CalendarBusyReader interface {
	BusyIntervals(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) []timeslot.Interval
}

type MonthCache interface {
	GetMonth(ctx context.Context, offeringID uuid.UUID, year int, month time.Month) (*MonthAvailability, bool)
	SetMonth(ctx context.Context, providerID uuid.UUID, rollup *MonthAvailability)
}

type availabilityQueriesImpl struct {
	offerings OfferingReader
	blocked   BlockedWindowReader
	busy      CalendarBusyReader
	cache     MonthCache
	clock     clock.Clock
	cfg       config.BookingConfig
}

func NewAvailabilityQueries(
	offerings OfferingReader,
	blocked BlockedWindowReader,
	busy CalendarBusyReader,
	cache MonthCache,
	clk clock.Clock,
	cfg config.BookingConfig,
) AvailabilityQueries {
	return &availabilityQueriesImpl{
		offerings: offerings,
		blocked:   blocked,
		busy:      busy,
		cache:     cache,
		clock:     clk,
		cfg:       cfg,
	}
}

func (q *availabilityQueriesImpl) Month(ctx context.Context, offeringID uuid.UUID, year int, month time.Month) (*MonthAvailability, error) {
	if cached, ok := q.cache.GetMonth(ctx, offeringID, year, month); ok {
		return cached, nil
	}

	off, err := q.loadOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	loc := off.Location()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	within := timeslot.Interval{Start: monthStart, End: monthEnd}

	blocked, err := q.blocked.CommittedWindows(ctx, off.ProviderID(), within)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	busy := q.busy.BusyIntervals(ctx, off.ProviderID(), within)
	cutoff := q.clock.Now().Add(q.cfg.MinLeadTime)

	rollup := &MonthAvailability{
		OfferingID: offeringID,
		Year:       year,
		Month:      month,
		Timezone:   off.Timezone(),
	}
	for day := monthStart; day.Before(monthEnd); day = day.AddDate(0, 0, 1) {
		rollup.Days = append(rollup.Days, q.rollupDay(off, day, blocked, busy, cutoff))
	}

	q.cache.SetMonth(ctx, off.ProviderID(), rollup)
	return rollup, nil
}

func (q *availabilityQueriesImpl) rollupDay(off *offering.Offering, day time.Time, blocked, busy []timeslot.Interval, cutoff time.Time) DayRollup {
	rollup := DayRollup{Date: day.Format("2006-01-02")}

	windows := off.WindowsOn(day)
	if len(windows) == 0 {
		rollup.Reason = ReasonNoServiceHours
		return rollup
	}

	var afterCutoff, freeOfBooked, available int
	for _, slot := range enumerateSlots(windows, off.Duration()) {
		if slot.Start.Before(cutoff) {
			continue
		}
		afterCutoff++
		if _, conflict := timeslot.FirstConflict(slot, blocked); conflict {
			continue
		}
		freeOfBooked++
		if _, conflict := timeslot.FirstConflict(slot, busy); conflict {
			continue
		}
		available++
	}

	if available > 0 {
		rollup.Available = true
		rollup.SlotCount = available
		return rollup
	}
	switch {
	case afterCutoff == 0:
		rollup.Reason = ReasonPastCutoff
	case freeOfBooked == 0:
		rollup.Reason = ReasonFullyBooked
	default:
		rollup.Reason = ReasonCalendarConflict
	}
	return rollup
}

func (q *availabilityQueriesImpl) Day(ctx context.Context, offeringID uuid.UUID, date string) (*DayAvailability, error) {
	off, err := q.loadOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	loc := off.Location()
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTimeSlot)
	}

	out := &DayAvailability{
		OfferingID: offeringID,
		Date:       date,
		Timezone:   off.Timezone(),
	}

	windows := off.WindowsOn(day)
	if len(windows) == 0 {
		return out, nil
	}

	within := timeslot.Interval{Start: day, End: day.AddDate(0, 0, 1)}
	blocked, err := q.blocked.CommittedWindows(ctx, off.ProviderID(), within)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	busy := q.busy.BusyIntervals(ctx, off.ProviderID(), within)
	cutoff := q.clock.Now().Add(q.cfg.MinLeadTime)

	for _, slot := range enumerateSlots(windows, off.Duration()) {
		view := SlotView{StartAt: slot.Start, EndAt: slot.End}
		switch {
		case slot.Start.Before(cutoff):
			view.Reason = ReasonPastCutoff
		case conflictsWith(slot, blocked):
			view.Reason = ReasonBooked
		case conflictsWith(slot, busy):
			view.Reason = ReasonCalendarConflict
		default:
			view.Available = true
		}
		out.Slots = append(out.Slots, view)
	}
	return out, nil
}

func (q *availabilityQueriesImpl) loadOffering(ctx context.Context, offeringID uuid.UUID) (*offering.Offering, error) {
	off, err := q.offerings.FindByID(ctx, offeringID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOfferingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return off, nil
}

func enumerateSlots(windows []timeslot.Interval, length time.Duration) []timeslot.Interval {
	var out []timeslot.Interval
	for _, w := range timeslot.Merge(windows) {
		out = append(out, timeslot.Slots(w, length)...)
	}
	return out
}

func conflictsWith(slot timeslot.Interval, blocked []timeslot.Interval) bool {
	_, conflict := timeslot.FirstConflict(slot, blocked)
	return conflict
}
