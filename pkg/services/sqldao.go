package services

import (
	"database/sql"
	"fmt"
)

// SQLRegistryDAO persists registered services in a SQL database. Queries use
// PostgreSQL placeholder syntax; the server binary opens the connection with
// the lib/pq driver.
type SQLRegistryDAO struct {
	db *sql.DB
}

// NewSQLRegistryDAO creates a DAO on an open database handle.
func NewSQLRegistryDAO(db *sql.DB) *SQLRegistryDAO {
	return &SQLRegistryDAO{db: db}
}

// Migrate creates the registered_services table if it does not exist.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS registered_services (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			match_pattern TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			allowed_to_proxy BOOLEAN NOT NULL DEFAULT FALSE,
			sso_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			anonymous_access BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create registered_services table: %w", err)
	}
	return nil
}

// Load implements RegistryDAO.
func (d *SQLRegistryDAO) Load() ([]RegisteredService, error) {
	rows, err := d.db.Query(`
		SELECT id, name, description, match_pattern, enabled, allowed_to_proxy,
			sso_enabled, anonymous_access, created_at, updated_at
		FROM registered_services
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegisteredService
	for rows.Next() {
		var svc RegisteredService
		if err := rows.Scan(
			&svc.ID, &svc.Name, &svc.Description, &svc.MatchPattern,
			&svc.Enabled, &svc.AllowedToProxy, &svc.SSOEnabled,
			&svc.AnonymousAccess, &svc.CreatedAt, &svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// Save implements RegistryDAO: insert with a generated id when the
// definition is new, full replace otherwise.
func (d *SQLRegistryDAO) Save(svc RegisteredService) (RegisteredService, error) {
	if svc.ID == 0 {
		err := d.db.QueryRow(`
			INSERT INTO registered_services (
				name, description, match_pattern, enabled, allowed_to_proxy,
				sso_enabled, anonymous_access, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`, svc.Name, svc.Description, svc.MatchPattern, svc.Enabled,
			svc.AllowedToProxy, svc.SSOEnabled, svc.AnonymousAccess,
		).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
		if err != nil {
			return RegisteredService{}, err
		}
		return svc, nil
	}

	err := d.db.QueryRow(`
		UPDATE registered_services
		SET name = $1, description = $2, match_pattern = $3, enabled = $4,
			allowed_to_proxy = $5, sso_enabled = $6, anonymous_access = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, svc.Name, svc.Description, svc.MatchPattern, svc.Enabled,
		svc.AllowedToProxy, svc.SSOEnabled, svc.AnonymousAccess, svc.ID,
	).Scan(&svc.UpdatedAt)
	if err == sql.ErrNoRows {
		return RegisteredService{}, fmt.Errorf("no stored service with id %d", svc.ID)
	}
	if err != nil {
		return RegisteredService{}, err
	}
	return svc, nil
}

// Delete implements RegistryDAO.
func (d *SQLRegistryDAO) Delete(svc RegisteredService) error {
	res, err := d.db.Exec(`DELETE FROM registered_services WHERE id = $1`, svc.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no stored service with id %d", svc.ID)
	}
	return nil
}
