package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

// BookingView is the full detail read model including the transition history.
type BookingView struct {
	ID            uuid.UUID        `json:"id"`
	OfferingID    uuid.UUID        `json:"offering_id"`
	OfferingTitle string           `json:"offering_title"`
	ProviderID    uuid.UUID        `json:"provider_id"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	StartAt       time.Time        `json:"start_at"`
	EndAt         time.Time        `json:"end_at"`
	Status        string           `json:"status"`
	Auto          bool             `json:"auto"`
	Version       int64            `json:"version"`
	PriceCents    int64            `json:"price_cents"`
	EscrowStatus  *string          `json:"escrow_status,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	History       []TransitionView `json:"history"`
}

type TransitionView struct {
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	ActorRole  string     `json:"actor_role"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	EventID    *string    `json:"event_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type BookingListItem struct {
	ID            uuid.UUID `json:"id"`
	OfferingID    uuid.UUID `json:"offering_id"`
	OfferingTitle string    `json:"offering_title"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type OfferingView struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	Title       string    `json:"title"`
	DurationMin int32     `json:"duration_min"`
	BufferMin   int32     `json:"buffer_min"`
	PriceCents  int64     `json:"price_cents"`
	FeeBps      int32     `json:"fee_bps"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Day-level unavailability reasons exposed by the availability queries.
const (
	ReasonNoServiceHours   = "no_service_hours"
	ReasonFullyBooked      = "fully_booked"
	ReasonCalendarConflict = "calendar_conflict"
	ReasonPastCutoff       = "past_cutoff"
	ReasonBooked           = "booked"
)

type MonthAvailability struct {
	OfferingID uuid.UUID  `json:"offering_id"`
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	Timezone   string     `json:"timezone"`
	Days       []DayRollup `json:"days"`
}

type DayRollup struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	SlotCount int    `json:"slot_count"`
	// Reason is set only when Available is false.
	Reason string `json:"reason,omitempty"`
}

type DayAvailability struct {
	OfferingID uuid.UUID  `json:"offering_id"`
	Date       string     `json:"date"`
	Timezone   string     `json:"timezone"`
	Slots      []SlotView `json:"slots"`
}

type SlotView struct {
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Available bool      `json:"available"`
	// Reason distinguishes booked slots from external calendar conflicts.
	Reason string `json:"reason,omitempty"`
}
