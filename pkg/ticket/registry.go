package ticket

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/fernwood-labs/gatehouse/pkg/authn"
)

// Config controls registry capacity and replay memory.
type Config struct {
	// MaxLiveTickets caps the number of live tickets. Zero means unlimited.
	MaxLiveTickets int
	// ConsumedMemory is how many consumed service-ticket ids to remember so
	// that replays report ErrTicketConsumed instead of ErrTicketNotFound.
	ConsumedMemory int
	// ConsumedTTL bounds how long a consumed id is remembered.
	ConsumedTTL time.Duration
}

// DefaultConfig returns sensible defaults for a single-node authority.
func DefaultConfig() Config {
	return Config{
		MaxLiveTickets: 1 << 20,
		ConsumedMemory: 65536,
		ConsumedTTL:    time.Hour,
	}
}

// Registry is the concurrent keyed store of live tickets. It exclusively
// owns every ticket instance; callers interact with tickets only through
// ids and copied snapshots.
type Registry struct {
	cfg Config
	gen *IDGenerator

	mu      sync.RWMutex
	tickets map[string]*record

	// consumed remembers recently consumed service-ticket ids after their
	// records are reclaimed, for replay detection.
	consumed *lru.LRU[string, time.Time]

	// now is swappable in tests
	now func() time.Time
}

// NewRegistry creates an empty ticket registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		gen:      NewIDGenerator(),
		tickets:  make(map[string]*record),
		consumed: lru.NewLRU[string, time.Time](cfg.ConsumedMemory, nil, cfg.ConsumedTTL),
		now:      time.Now,
	}
}

// IssueGrantingTicket stores a new root TGT carrying the given principal and
// returns its id.
func (reg *Registry) IssueGrantingTicket(principal authn.Principal, policy ExpirationPolicy) (string, error) {
	now := reg.now()
	rec := &record{
		kind:      KindGranting,
		children:  make(map[string]struct{}),
		principal: principal.Clone(),
		policy:    policy,
		created:   now,
		lastUsed:  now,
	}
	return reg.insert(reg.gen.GrantingID, rec)
}

// GrantProxyTicket issues a child TGT from an existing granting ticket,
// extending the trust chain. The child carries the parent's principal.
func (reg *Registry) GrantProxyTicket(tgtID string, policy ExpirationPolicy) (string, error) {
	return reg.issueChild(tgtID, KindGranting, "", policy, reg.gen.GrantingID)
}

// GrantServiceTicket issues a single-use service ticket for serviceURL as a
// child of the given TGT. The full ancestor chain must be valid; issuance
// refreshes the TGT's last-used timestamp.
func (reg *Registry) GrantServiceTicket(tgtID, serviceURL string, policy ExpirationPolicy) (string, error) {
	return reg.issueChild(tgtID, KindService, serviceURL, policy, reg.gen.ServiceID)
}

// ValidateServiceTicket consumes a service ticket. Exactly one of any number
// of concurrent calls for the same id succeeds; the rest observe
// ErrTicketConsumed. On success it returns the principal carried by the
// ticket's root TGT.
func (reg *Registry) ValidateServiceTicket(stID, serviceURL string) (authn.Principal, error) {
	rec := reg.lookup(stID)
	if rec == nil {
		if _, replay := reg.consumed.Get(stID); replay {
			return authn.Principal{}, ErrTicketConsumed
		}
		return authn.Principal{}, ErrTicketNotFound
	}

	now := reg.now()

	rec.mu.Lock()
	if rec.kind != KindService {
		rec.mu.Unlock()
		return authn.Principal{}, ErrTicketNotFound
	}
	if rec.consumed {
		rec.mu.Unlock()
		return authn.Principal{}, ErrTicketConsumed
	}
	if rec.deadLocked(now) {
		rec.mu.Unlock()
		return authn.Principal{}, ErrTicketExpired
	}
	if rec.service != serviceURL {
		rec.mu.Unlock()
		return authn.Principal{}, ErrServiceMismatch
	}
	parentID := rec.parentID
	rec.mu.Unlock()

	if err := reg.chainDead(parentID, now); err != nil {
		return authn.Principal{}, err
	}

	// Single-winner consumption: the flag flips under the record mutex, so
	// every other concurrent validator loses here.
	rec.mu.Lock()
	if rec.consumed {
		rec.mu.Unlock()
		return authn.Principal{}, ErrTicketConsumed
	}
	if rec.invalid {
		rec.mu.Unlock()
		return authn.Principal{}, ErrTicketExpired
	}
	rec.consumed = true
	principal := rec.principal.Clone()
	rec.mu.Unlock()

	reg.consumed.Add(stID, now)
	reg.remove(stID)
	reg.unlink(parentID, stID)

	return principal, nil
}

// RenewGrantingTicket refreshes a TGT's last-used timestamp, keeping sliding
// policies alive. It fails if the ticket or any ancestor is no longer valid.
func (reg *Registry) RenewGrantingTicket(tgtID string) error {
	rec := reg.lookup(tgtID)
	if rec == nil {
		return ErrTicketNotFound
	}

	now := reg.now()

	rec.mu.Lock()
	if rec.kind != KindGranting {
		rec.mu.Unlock()
		return ErrNotGrantingTicket
	}
	if rec.deadLocked(now) {
		rec.mu.Unlock()
		return ErrTicketExpired
	}
	parentID := rec.parentID
	rec.mu.Unlock()

	if err := reg.chainDead(parentID, now); err != nil {
		return err
	}

	rec.mu.Lock()
	if rec.invalid {
		rec.mu.Unlock()
		return ErrTicketExpired
	}
	rec.lastUsed = now
	rec.mu.Unlock()
	return nil
}

// Invalidate marks a ticket and, transitively, every ticket issued from it
// as invalid. It is idempotent: unknown or already-invalid ids are no-ops.
// The descendant tree is walked iteratively so deep proxy chains cannot
// exhaust the stack.
func (reg *Registry) Invalidate(id string) {
	stack := []string{id}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec := reg.lookup(next)
		if rec == nil {
			continue
		}
		rec.mu.Lock()
		if rec.invalid {
			rec.mu.Unlock()
			continue
		}
		rec.invalid = true
		for child := range rec.children {
			stack = append(stack, child)
		}
		rec.mu.Unlock()
	}
}

// ExpirePass removes invalid, consumed, and policy-expired tickets,
// reclaiming storage. It returns the number of records removed. Every read
// path re-checks policies, so correctness never depends on this running.
func (reg *Registry) ExpirePass() int {
	now := reg.now()

	reg.mu.RLock()
	ids := make([]string, 0, len(reg.tickets))
	for id := range reg.tickets {
		ids = append(ids, id)
	}
	reg.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		rec := reg.lookup(id)
		if rec == nil {
			continue
		}
		rec.mu.Lock()
		dead := rec.consumed || rec.deadLocked(now)
		parentID := rec.parentID
		rec.mu.Unlock()
		if !dead {
			continue
		}
		// Kill the subtree first so descendants cannot outlive the removal
		// of their ancestor; they are reclaimed on this or a later pass.
		reg.Invalidate(id)
		reg.remove(id)
		reg.unlink(parentID, id)
		removed++
	}
	return removed
}

// Describe returns a snapshot of a live ticket's state.
func (reg *Registry) Describe(id string) (Snapshot, error) {
	rec := reg.lookup(id)
	if rec == nil {
		return Snapshot{}, ErrTicketNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.snapshotLocked(), nil
}

// Count returns the number of live records, including ones not yet reclaimed.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.tickets)
}

// SetClock overrides the registry's time source. Tests only.
func (reg *Registry) SetClock(now func() time.Time) {
	reg.now = now
}

// issueChild creates a child ticket under parentID. The child is inserted
// into the id map before it is linked to the parent: a parent invalidation
// racing with issuance either sees the link and walks to the child, or we
// observe the invalidation when linking and retract the child. Either way no
// ticket stays valid under an invalid ancestor once both calls return.
func (reg *Registry) issueChild(parentID string, kind Kind, serviceURL string, policy ExpirationPolicy, newID func() (string, error)) (string, error) {
	parent := reg.lookup(parentID)
	if parent == nil {
		return "", ErrTicketNotFound
	}

	now := reg.now()

	parent.mu.Lock()
	if parent.kind != KindGranting {
		parent.mu.Unlock()
		return "", ErrNotGrantingTicket
	}
	if parent.deadLocked(now) {
		parent.mu.Unlock()
		return "", ErrTicketExpired
	}
	principal := parent.principal.Clone()
	grandparent := parent.parentID
	parent.mu.Unlock()

	if err := reg.chainDead(grandparent, now); err != nil {
		return "", err
	}

	rec := &record{
		kind:      kind,
		parentID:  parentID,
		children:  make(map[string]struct{}),
		service:   serviceURL,
		principal: principal,
		policy:    policy,
		created:   now,
		lastUsed:  now,
	}
	id, err := reg.insert(newID, rec)
	if err != nil {
		return "", err
	}

	parent.mu.Lock()
	if parent.invalid {
		parent.mu.Unlock()
		reg.remove(id)
		return "", ErrTicketExpired
	}
	parent.children[id] = struct{}{}
	parent.lastUsed = now
	parent.mu.Unlock()

	return id, nil
}

// chainDead walks from id up to the root, failing if any ancestor is
// invalid, expired, or already reclaimed. Records are locked one at a time,
// never nested, so the walk cannot deadlock with invalidation fan-out.
func (reg *Registry) chainDead(id string, now time.Time) error {
	for id != "" {
		rec := reg.lookup(id)
		if rec == nil {
			return ErrTicketExpired
		}
		rec.mu.Lock()
		dead := rec.deadLocked(now)
		next := rec.parentID
		rec.mu.Unlock()
		if dead {
			return ErrTicketExpired
		}
		id = next
	}
	return nil
}

// insert stores a record under a freshly generated id, retrying internally
// on the (practically impossible) collision until an unused id is found.
func (reg *Registry) insert(newID func() (string, error), rec *record) (string, error) {
	for {
		id, err := newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate ticket id: %w", err)
		}

		reg.mu.Lock()
		if reg.cfg.MaxLiveTickets > 0 && len(reg.tickets) >= reg.cfg.MaxLiveTickets {
			reg.mu.Unlock()
			return "", ErrStoreFull
		}
		if _, exists := reg.tickets[id]; exists {
			reg.mu.Unlock()
			continue
		}
		rec.id = id
		reg.tickets[id] = rec
		reg.mu.Unlock()
		return id, nil
	}
}

func (reg *Registry) lookup(id string) *record {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.tickets[id]
}

func (reg *Registry) remove(id string) {
	reg.mu.Lock()
	delete(reg.tickets, id)
	reg.mu.Unlock()
}

func (reg *Registry) unlink(parentID, childID string) {
	if parentID == "" {
		return
	}
	parent := reg.lookup(parentID)
	if parent == nil {
		return
	}
	parent.mu.Lock()
	delete(parent.children, childID)
	parent.mu.Unlock()
}
