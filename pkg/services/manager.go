package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fernwood-labs/gatehouse/pkg/observability"
)

// Manager answers "does this URL belong to a known, enabled service, and
// under which policy". It keeps an in-memory index of all definitions,
// loaded from the DAO at construction and kept write-through on every
// mutation.
//
// Save and Delete are serialized by a dedicated mutation mutex so the
// persistent store and the index cannot diverge through lost updates; reads
// take only the index read lock and never wait behind a mutation's DAO call.
type Manager struct {
	dao    RegistryDAO
	logger *observability.Logger

	// mutation serializes Save/Delete across the (persist + republish) pair
	mutation sync.Mutex

	// mu guards the index only
	mu    sync.RWMutex
	index map[int64]RegisteredService
}

// NewManager loads all persisted definitions into the index.
func NewManager(dao RegistryDAO, logger *observability.Logger) (*Manager, error) {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	m := &Manager{
		dao:    dao,
		logger: logger.WithField("component", "service-registry"),
		index:  make(map[int64]RegisteredService),
	}

	stored, err := dao.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, svc := range stored {
		m.index[svc.ID] = svc
	}
	m.logger.WithField("services", len(stored)).Info("service registry loaded")
	return m, nil
}

// Save persists a definition and republishes it into the index. A zero id
// registers a new service; a non-zero id replaces the stored definition
// wholesale, failing with ErrServiceNotFound when no such definition exists.
// On DAO failure neither the store nor the index changes.
func (m *Manager) Save(svc RegisteredService) (RegisteredService, error) {
	m.mutation.Lock()
	defer m.mutation.Unlock()

	if svc.ID != 0 {
		m.mu.RLock()
		_, ok := m.index[svc.ID]
		m.mu.RUnlock()
		if !ok {
			return RegisteredService{}, ErrServiceNotFound
		}
	}

	saved, err := m.dao.Save(svc)
	if err != nil {
		return RegisteredService{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	m.mu.Lock()
	m.index[saved.ID] = saved
	m.mu.Unlock()

	m.logger.WithFields(map[string]interface{}{
		"service_id": saved.ID,
		"name":       saved.Name,
		"pattern":    saved.MatchPattern,
	}).Info("service definition saved")
	return saved, nil
}

// Delete removes a definition from the store and the index, returning the
// removed definition. Unknown ids report ErrServiceNotFound.
func (m *Manager) Delete(id int64) (RegisteredService, error) {
	m.mutation.Lock()
	defer m.mutation.Unlock()

	m.mu.RLock()
	svc, ok := m.index[id]
	m.mu.RUnlock()
	if !ok {
		return RegisteredService{}, ErrServiceNotFound
	}

	if err := m.dao.Delete(svc); err != nil {
		return RegisteredService{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	m.mu.Lock()
	delete(m.index, id)
	m.mu.Unlock()

	m.logger.WithField("service_id", id).Info("service definition deleted")
	return svc, nil
}

// FindByID returns a copy of the definition with the given id. While the
// registry is empty it returns the disabled-mode definition for any id.
func (m *Manager) FindByID(id int64) (RegisteredService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.index) == 0 {
		return DisabledModeService(), nil
	}
	svc, ok := m.index[id]
	if !ok {
		return RegisteredService{}, ErrServiceNotFound
	}
	return svc, nil
}

// FindMatching returns the first definition whose pattern matches
// serviceURL. While the registry is empty it returns the disabled-mode
// definition for any URL; with entries present and none matching, the denial
// is hard.
func (m *Manager) FindMatching(serviceURL string) (RegisteredService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.index) == 0 {
		return DisabledModeService(), nil
	}
	for _, id := range m.sortedIDsLocked() {
		if svc := m.index[id]; svc.Matches(serviceURL) {
			return svc, nil
		}
	}
	return RegisteredService{}, ErrServiceNotFound
}

// ListAll returns a snapshot of all definitions ordered by id.
func (m *Manager) ListAll() []RegisteredService {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RegisteredService, 0, len(m.index))
	for _, id := range m.sortedIDsLocked() {
		out = append(out, m.index[id])
	}
	return out
}

// Count returns the number of registered definitions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}

// sortedIDsLocked keeps scan order stable across calls. Caller holds m.mu.
func (m *Manager) sortedIDsLocked() []int64 {
	ids := make([]int64, 0, len(m.index))
	for id := range m.index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
