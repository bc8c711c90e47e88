package booking

import "github.com/google/uuid"

type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusConfirmed      Status = "confirmed"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusRejected       Status = "rejected"
	StatusCancelled      Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingPayment, StatusPaid, StatusConfirmed,
		StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsCommitted reports whether the status reserves the slot: the availability
// engine must treat these bookings as blocking.
func (s Status) IsCommitted() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusConfirmed, StatusInProgress:
		return true
	default:
		return false
	}
}

// CommittedStatuses is the canonical order used by availability queries.
func CommittedStatuses() []Status {
	return []Status{StatusPendingPayment, StatusPaid, StatusConfirmed, StatusInProgress}
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RolePlatform Role = "platform"
	// RoleLedger marks transitions applied by the event monitor from confirmed
	// on-chain outcomes, never by a human actor.
	RoleLedger Role = "ledger"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RolePlatform, RoleLedger:
		return true
	default:
		return false
	}
}

type Actor struct {
	ID   uuid.UUID
	Role Role
}

// LedgerActor is the synthetic actor recorded for event-driven transitions.
func LedgerActor() Actor {
	return Actor{ID: uuid.Nil, Role: RoleLedger}
}

func PlatformActor() Actor {
	return Actor{ID: uuid.Nil, Role: RolePlatform}
}
