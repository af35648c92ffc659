package ticket

import (
	"sync"
	"time"

	"github.com/fernwood-labs/gatehouse/pkg/authn"
)

// Kind discriminates the two ticket varieties.
type Kind string

const (
	// KindGranting marks a ticket-granting ticket (TGT), the root or an
	// intermediate node of a trust chain.
	KindGranting Kind = "granting"
	// KindService marks a single-use service ticket (ST).
	KindService Kind = "service"
)

// Snapshot is a read-only view of one ticket's state, as returned by
// Registry.Describe. It is a copy; mutating it has no effect on the store.
type Snapshot struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	ParentID  string          `json:"parent_id,omitempty"`
	Service   string          `json:"service,omitempty"`
	Principal authn.Principal `json:"principal"`
	CreatedAt time.Time       `json:"created_at"`
	LastUsed  time.Time       `json:"last_used"`
	Children  int             `json:"children"`
}

// record is the registry's internal per-ticket state. The registry map owns
// membership; rec.mu owns every field transition after insertion. Parent and
// child links are ids, not pointers, so the ownership graph is walked through
// the map and never recursively through live references.
type record struct {
	mu sync.Mutex

	id        string
	kind      Kind
	parentID  string
	children  map[string]struct{}
	service   string
	principal authn.Principal
	policy    ExpirationPolicy
	created   time.Time
	lastUsed  time.Time

	invalid  bool
	consumed bool
}

// snapshotLocked copies the record's state. Caller holds rec.mu.
func (r *record) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        r.id,
		Kind:      r.kind,
		ParentID:  r.parentID,
		Service:   r.service,
		Principal: r.principal.Clone(),
		CreatedAt: r.created,
		LastUsed:  r.lastUsed,
		Children:  len(r.children),
	}
}

// deadLocked reports whether the record itself is invalid or past its
// policy. Caller holds rec.mu. Ancestor state is checked separately.
func (r *record) deadLocked(now time.Time) bool {
	if r.invalid {
		return true
	}
	if r.policy == nil {
		return false
	}
	return r.policy.Expired(r.created, r.lastUsed, now)
}
