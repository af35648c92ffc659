package services

import (
	"fmt"
	"sync"
)

// RegistryDAO is the persistence boundary for registered services. Save
// assigns an id on first persistence and returns the stored definition.
type RegistryDAO interface {
	Load() ([]RegisteredService, error)
	Save(svc RegisteredService) (RegisteredService, error)
	Delete(svc RegisteredService) error
}

// MemoryRegistryDAO is a non-durable RegistryDAO for bootstrap deployments
// and tests.
type MemoryRegistryDAO struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]RegisteredService
}

// NewMemoryRegistryDAO creates an empty in-memory DAO.
func NewMemoryRegistryDAO() *MemoryRegistryDAO {
	return &MemoryRegistryDAO{nextID: 1, rows: make(map[int64]RegisteredService)}
}

// Load implements RegistryDAO.
func (d *MemoryRegistryDAO) Load() ([]RegisteredService, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]RegisteredService, 0, len(d.rows))
	for _, svc := range d.rows {
		out = append(out, svc)
	}
	return out, nil
}

// Save implements RegistryDAO, assigning an id to new definitions. Updating
// an id that was never stored is an error, matching the SQL implementation.
func (d *MemoryRegistryDAO) Save(svc RegisteredService) (RegisteredService, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if svc.ID == 0 {
		svc.ID = d.nextID
		d.nextID++
	} else if _, ok := d.rows[svc.ID]; !ok {
		return RegisteredService{}, fmt.Errorf("no stored service with id %d", svc.ID)
	}
	d.rows[svc.ID] = svc
	return svc, nil
}

// Delete implements RegistryDAO.
func (d *MemoryRegistryDAO) Delete(svc RegisteredService) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rows[svc.ID]; !ok {
		return fmt.Errorf("no stored service with id %d", svc.ID)
	}
	delete(d.rows, svc.ID)
	return nil
}
