package booking

import "errors"

var (
	ErrInvalidTransition      = errors.New("transition not permitted by lifecycle")
	ErrActorNotAllowed        = errors.New("actor not allowed for transition")
	ErrFundedDirectCancel     = errors.New("funded booking cannot be cancelled without ledger confirmation")
	ErrTerminalState          = errors.New("booking is in a terminal state")
	ErrUnknownStatus          = errors.New("unknown booking status")
)

type edge struct {
	from Status
	to   Status
}

// The lifecycle DAG. Cancellation edges from every non-terminal state cover
// both direct cancellation (unfunded) and ledger-confirmed emergency
// cancellation; which one applies is decided by the actor policy below.
var transitionTable = map[edge]struct{}{
	{StatusPending, StatusConfirmed}:        {},
	{StatusPending, StatusRejected}:         {},
	{StatusPending, StatusCancelled}:        {},
	{StatusPendingPayment, StatusPaid}:      {},
	{StatusPendingPayment, StatusCancelled}: {},
	{StatusPaid, StatusConfirmed}:           {},
	{StatusPaid, StatusCancelled}:           {},
	{StatusConfirmed, StatusInProgress}:     {},
	{StatusConfirmed, StatusCancelled}:      {},
	{StatusInProgress, StatusCompleted}:     {},
	{StatusInProgress, StatusCancelled}:     {},
}

func CanTransition(from, to Status) bool {
	_, ok := transitionTable[edge{from, to}]
	return ok
}

// allowedRoles returns which roles may request a given edge. Deny by default:
// an edge absent from this map is machine-only (ledger or platform sweep).
var allowedRoles = map[edge]map[Role]struct{}{
	{StatusPending, StatusConfirmed}:        roles(RoleProvider),
	{StatusPending, StatusRejected}:         roles(RoleProvider),
	{StatusPending, StatusCancelled}:        roles(RoleCustomer, RolePlatform, RoleLedger),
	{StatusPendingPayment, StatusPaid}:      roles(RoleLedger),
	{StatusPendingPayment, StatusCancelled}: roles(RoleCustomer, RolePlatform, RoleLedger),
	{StatusPaid, StatusConfirmed}:           roles(RoleProvider),
	{StatusPaid, StatusCancelled}:           roles(RoleLedger),
	{StatusConfirmed, StatusInProgress}:     roles(RolePlatform),
	{StatusConfirmed, StatusCancelled}:      roles(RoleCustomer, RoleProvider, RolePlatform, RoleLedger),
	{StatusInProgress, StatusCompleted}:     roles(RolePlatform, RoleLedger),
	{StatusInProgress, StatusCancelled}:     roles(RoleLedger),
}

func roles(rs ...Role) map[Role]struct{} {
	m := make(map[Role]struct{}, len(rs))
	for _, r := range rs {
		m[r] = struct{}{}
	}
	return m
}

// AuthorizeTransition checks the actor policy for an edge. funded marks
// bookings whose escrow record has reached funded or later: their cancellation
// must come from a confirmed ledger event, never from a direct mutation.
func AuthorizeTransition(from, to Status, actor Actor, funded bool) error {
	if from.IsTerminal() {
		return ErrTerminalState
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	if to == StatusCancelled && funded && actor.Role != RoleLedger {
		return ErrFundedDirectCancel
	}
	allowed, ok := allowedRoles[edge{from, to}]
	if !ok {
		return ErrActorNotAllowed
	}
	if _, ok := allowed[actor.Role]; !ok {
		return ErrActorNotAllowed
	}
	return nil
}
