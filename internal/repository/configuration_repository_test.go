package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/models"
)

func newConfigMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestConfigurationRepositoryListByKeys(t *testing.T) {
	db, mock, cleanup := newConfigMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)

	rows := sqlmock.NewRows([]string{"key", "value", "type", "description", "updated_by", "updated_at"}).
		AddRow(models.ConfigKeyFirstSemStart, "7-1", models.ConfigurationTypeString, nil, nil, time.Now())
	mock.ExpectQuery("SELECT key, value, type, description, updated_by, updated_at FROM configurations WHERE key IN").
		WithArgs(models.ConfigKeyFirstSemStart, models.ConfigKeySecondSemStart).
		WillReturnRows(rows)

	configs, err := repo.ListByKeys(context.Background(), []string{models.ConfigKeyFirstSemStart, models.ConfigKeySecondSemStart})
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "7-1", configs[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepositoryListByKeysEmpty(t *testing.T) {
	db, _, cleanup := newConfigMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)

	configs, err := repo.ListByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, configs)
}

func TestConfigurationRepositoryUpsertMany(t *testing.T) {
	db, mock, cleanup := newConfigMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configurations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO configurations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertMany(context.Background(), []models.Configuration{
		{Key: models.ConfigKeyFirstSemStart, Value: "7-1", Type: models.ConfigurationTypeString},
		{Key: models.ConfigKeySecondSemStart, Value: "1-1", Type: models.ConfigurationTypeString},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
