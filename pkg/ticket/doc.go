// Package ticket implements the Gatehouse ticket store: a concurrent keyed
// registry of live granting tickets and service tickets.
//
// # Ticket model
//
// A granting ticket (TGT) is the root of a trust chain and proves a
// principal authenticated once. Service tickets (ST) are single-use
// credentials issued from a TGT for exactly one target service. TGTs may
// themselves be issued from a parent TGT, forming a proxy chain. A ticket's
// validity transitively bounds all of its descendants: invalidating a TGT
// invalidates every ticket issued from it.
//
// # Concurrency
//
// The registry owns every ticket instance. Membership in the id map is
// guarded by a read/write mutex; each ticket record carries its own mutex
// for state transitions, so operations on distinct ids do not contend.
// Service-ticket consumption is a test-and-set under the record mutex:
// exactly one of any number of concurrent validators wins.
//
// # Expiration
//
// Expiration policies are evaluated lazily on every read path. ExpirePass
// exists purely to reclaim storage; correctness never depends on it running.
package ticket
