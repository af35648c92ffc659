package ticket

import "time"

// ExpirationPolicy decides, from a ticket's timestamps and the current time,
// whether the ticket is still valid. Policies are attached per ticket at
// issuance and evaluated lazily on every read path.
type ExpirationPolicy interface {
	Expired(created, lastUsed, now time.Time) bool
}

// NeverExpires is a policy under which a ticket only dies by explicit
// invalidation.
type NeverExpires struct{}

// Expired always reports false.
func (NeverExpires) Expired(_, _, _ time.Time) bool { return false }

// MaxLifetimePolicy expires a ticket a fixed duration after creation,
// regardless of use.
type MaxLifetimePolicy struct {
	Lifetime time.Duration
}

// NewMaxLifetimePolicy creates a hard-ceiling policy.
func NewMaxLifetimePolicy(lifetime time.Duration) MaxLifetimePolicy {
	return MaxLifetimePolicy{Lifetime: lifetime}
}

// Expired reports whether the lifetime ceiling has been reached.
func (p MaxLifetimePolicy) Expired(created, _, now time.Time) bool {
	return now.Sub(created) >= p.Lifetime
}

// SlidingWindowPolicy expires a ticket when it has been idle longer than
// MaxIdle since its last use, or unconditionally once MaxLifetime has
// passed since creation. A zero MaxLifetime means no hard ceiling.
type SlidingWindowPolicy struct {
	MaxIdle     time.Duration
	MaxLifetime time.Duration
}

// NewSlidingWindowPolicy creates a sliding policy with an idle bound and an
// optional hard lifetime ceiling.
func NewSlidingWindowPolicy(maxIdle, maxLifetime time.Duration) SlidingWindowPolicy {
	return SlidingWindowPolicy{MaxIdle: maxIdle, MaxLifetime: maxLifetime}
}

// Expired reports whether either bound has been exceeded.
func (p SlidingWindowPolicy) Expired(created, lastUsed, now time.Time) bool {
	if p.MaxLifetime > 0 && now.Sub(created) >= p.MaxLifetime {
		return true
	}
	return now.Sub(lastUsed) >= p.MaxIdle
}
