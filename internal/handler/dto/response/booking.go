package response

import (
	"time"

	"escrowbook/internal/domain/escrow"
	"escrowbook/internal/usecase/commands"
	"escrowbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID            uuid.UUID            `json:"id"`
	OfferingID    uuid.UUID            `json:"offeringId"`
	OfferingTitle string               `json:"offeringTitle"`
	ProviderID    uuid.UUID            `json:"providerId"`
	CustomerID    uuid.UUID            `json:"customerId"`
	StartAt       time.Time            `json:"startAt"`
	EndAt         time.Time            `json:"endAt"`
	Status        string               `json:"status"`
	Auto          bool                 `json:"auto"`
	Version       int64                `json:"version"`
	PriceCents    int64                `json:"priceCents"`
	EscrowStatus  *string              `json:"escrowStatus,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	History       []TransitionResponse `json:"history"`
}

type TransitionResponse struct {
	FromStatus string     `json:"fromStatus"`
	ToStatus   string     `json:"toStatus"`
	ActorRole  string     `json:"actorRole"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	EventID    *string    `json:"eventId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

type BookingListResponse struct {
	ID            uuid.UUID `json:"id"`
	OfferingID    uuid.UUID `json:"offeringId"`
	OfferingTitle string    `json:"offeringTitle"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateBookingResponse struct {
	Booking      *BookingResponse `json:"booking"`
	DepositTxRef *string          `json:"depositTxRef,omitempty"`
}

// PendingTxResponse acknowledges a submitted ledger transaction whose outcome
// will arrive asynchronously.
type PendingTxResponse struct {
	TxRef       string    `json:"txRef"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func FromBookingView(rm *queries.BookingView) *BookingResponse {
	history := make([]TransitionResponse, len(rm.History))
	for i, t := range rm.History {
		history[i] = TransitionResponse{
			FromStatus: t.FromStatus,
			ToStatus:   t.ToStatus,
			ActorRole:  t.ActorRole,
			ActorID:    t.ActorID,
			EventID:    t.EventID,
			OccurredAt: t.OccurredAt,
		}
	}
	return &BookingResponse{
		ID:            rm.ID,
		OfferingID:    rm.OfferingID,
		OfferingTitle: rm.OfferingTitle,
		ProviderID:    rm.ProviderID,
		CustomerID:    rm.CustomerID,
		StartAt:       rm.StartAt,
		EndAt:         rm.EndAt,
		Status:        rm.Status,
		Auto:          rm.Auto,
		Version:       rm.Version,
		PriceCents:    rm.PriceCents,
		EscrowStatus:  rm.EscrowStatus,
		CreatedAt:     rm.CreatedAt,
		UpdatedAt:     rm.UpdatedAt,
		History:       history,
	}
}

func FromBookingListItem(rm *queries.BookingListItem) *BookingListResponse {
	return &BookingListResponse{
		ID:            rm.ID,
		OfferingID:    rm.OfferingID,
		OfferingTitle: rm.OfferingTitle,
		StartAt:       rm.StartAt,
		EndAt:         rm.EndAt,
		Status:        rm.Status,
		CreatedAt:     rm.CreatedAt,
	}
}

func FromCreateBookingResult(result *commands.CreateBookingResult) *CreateBookingResponse {
	return &CreateBookingResponse{
		Booking:      FromBookingView(result.Booking),
		DepositTxRef: result.DepositTxRef,
	}
}

func FromPendingTx(tx *escrow.PendingTx) *PendingTxResponse {
	return &PendingTxResponse{
		TxRef:       tx.TxRef,
		SubmittedAt: tx.SubmittedAt,
	}
}
