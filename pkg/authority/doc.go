// Package authority implements the central authentication authority: the
// façade every transport front end consumes.
//
// A login request carries one or more candidate credentials and an optional
// target service. The authority validates the credentials, consults the
// service registry when a target service is named, and issues tickets
// through the ticket store. Validation requests redeem a service ticket and
// return the principal carried by its root granting ticket.
//
// The authority owns no durable state of its own; everything lives in the
// ticket registry and the service manager.
package authority
