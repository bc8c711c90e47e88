package errs

import "errors"

// Sentinel errors shared across usecase layers. Callers match with errors.Is;
// low-level causes are attached via Mark.
var (
	// Booking lifecycle
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStaleVersion      = errors.New("stale version")

	// Slot allocation
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrInvalidTimeSlot = errors.New("invalid time slot")

	// Offering / schedule
	ErrOfferingNotFound = errors.New("offering not found")
	ErrInvalidSchedule  = errors.New("invalid schedule")

	// Escrow ledger
	ErrChainCallFailed        = errors.New("chain call failed")
	ErrEventUnresolvable      = errors.New("event unresolvable")
	ErrInsufficientPermission = errors.New("insufficient permission")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
