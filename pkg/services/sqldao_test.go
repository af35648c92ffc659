package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLDAOLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, description, match_pattern").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "match_pattern", "enabled",
			"allowed_to_proxy", "sso_enabled", "anonymous_access",
			"created_at", "updated_at",
		}).
			AddRow(1, "app", "", "https://app.example/*", true, false, true, false, now, now).
			AddRow(2, "billing", "invoices", "https://billing.example/*", true, true, true, false, now, now))

	dao := NewSQLRegistryDAO(db)
	loaded, err := dao.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, int64(1), loaded[0].ID)
	assert.Equal(t, "billing", loaded[1].Name)
	assert.True(t, loaded[1].AllowedToProxy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDAOSaveInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO registered_services").
		WithArgs("app", "", "https://app.example/*", true, false, true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(7, now, now))

	dao := NewSQLRegistryDAO(db)
	saved, err := dao.Save(RegisteredService{
		Name:         "app",
		MatchPattern: "https://app.example/*",
		Enabled:      true,
		SSOEnabled:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), saved.ID)
	assert.Equal(t, now, saved.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDAOSaveUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("UPDATE registered_services").
		WithArgs("app", "renamed", "https://app.example/v2/*", false, false, true, false, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	dao := NewSQLRegistryDAO(db)
	saved, err := dao.Save(RegisteredService{
		ID:           7,
		Name:         "app",
		Description:  "renamed",
		MatchPattern: "https://app.example/v2/*",
		SSOEnabled:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), saved.ID)
	assert.Equal(t, now, saved.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDAOSaveUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE registered_services").
		WithArgs("ghost", "", "*", false, false, false, false, int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	dao := NewSQLRegistryDAO(db)
	_, err = dao.Save(RegisteredService{ID: 99, Name: "ghost", MatchPattern: "*"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDAODelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM registered_services").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	dao := NewSQLRegistryDAO(db)
	require.NoError(t, dao.Delete(RegisteredService{ID: 7}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDAODeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM registered_services").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	dao := NewSQLRegistryDAO(db)
	err = dao.Delete(RegisteredService{ID: 99})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
