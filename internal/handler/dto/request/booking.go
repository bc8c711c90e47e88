package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	OfferingID uuid.UUID `json:"offering_id" binding:"required"`
	StartAt    time.Time `json:"start_at" binding:"required"`
}

// TransitionRequest names the desired target state; the lifecycle table and
// actor policy decide whether the caller may apply it.
type TransitionRequest struct {
	Target string `json:"target" binding:"required"`
}
