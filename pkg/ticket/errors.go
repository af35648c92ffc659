package ticket

import "errors"

var (
	// ErrTicketNotFound is returned when no ticket with the given id exists
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketExpired is returned when a ticket, or any of its ancestors,
	// has expired or been invalidated
	ErrTicketExpired = errors.New("ticket expired")

	// ErrTicketConsumed is returned when a service ticket was already
	// validated once
	ErrTicketConsumed = errors.New("service ticket already consumed")

	// ErrServiceMismatch is returned when a service ticket is presented for
	// a different service than it was issued to
	ErrServiceMismatch = errors.New("service does not match ticket")

	// ErrStoreFull is returned when the registry's live-ticket capacity is
	// exhausted
	ErrStoreFull = errors.New("ticket store capacity exceeded")

	// ErrNotGrantingTicket is returned when an operation requiring a
	// granting ticket is attempted on a service ticket id
	ErrNotGrantingTicket = errors.New("not a granting ticket")
)
