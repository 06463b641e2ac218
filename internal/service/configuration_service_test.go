package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type configurationRepoStub struct {
	items map[string]models.Configuration
	err   error
	reads int
}

func (s *configurationRepoStub) ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	result := []models.Configuration{}
	for _, key := range keys {
		if cfg, ok := s.items[key]; ok {
			result = append(result, cfg)
		}
	}
	return result, nil
}

func (s *configurationRepoStub) Get(ctx context.Context, key string) (*models.Configuration, error) {
	if s.err != nil {
		return nil, s.err
	}
	if cfg, ok := s.items[key]; ok {
		return &cfg, nil
	}
	return nil, sql.ErrNoRows
}

func (s *configurationRepoStub) UpsertMany(ctx context.Context, cfgs []models.Configuration) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]models.Configuration)
	}
	for _, cfg := range cfgs {
		s.items[cfg.Key] = cfg
	}
	return nil
}

func TestConfigurationDefaultsWhenUnset(t *testing.T) {
	svc := NewConfigurationService(&configurationRepoStub{}, &auditRecorderStub{}, nil, nil)

	calendar, err := svc.Calendar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, calendar.FirstSemStart.Month)
	assert.Equal(t, 1, calendar.FirstSemStart.Day)
	assert.Equal(t, 1, calendar.SecondSemStart.Month)

	fees, err := svc.FeePolicy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(70000), fees.SFCTotal)
	assert.Equal(t, int64(35000), fees.NonSFCTotal)
}

func TestConfigurationSnapshotInvalidatedOnWrite(t *testing.T) {
	repo := &configurationRepoStub{}
	audit := &auditRecorderStub{}
	svc := NewConfigurationService(repo, audit, nil, nil)

	_, err := svc.Calendar(context.Background())
	require.NoError(t, err)
	_, err = svc.Calendar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads, "reads after the first should hit the snapshot")

	total := int64(80000)
	resp, err := svc.UpdateCalendar(context.Background(), dto.UpdateCalendarConfigRequest{
		FirstSemStart: &dto.AnchorPayload{Month: 6, Day: 15},
		SFCTotalFee:   &total,
	}, &models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.Calendar.FirstSemStart.Month)
	assert.Equal(t, 15, resp.Calendar.FirstSemStart.Day)
	assert.Equal(t, int64(80000), resp.FeePolicy.SFCTotal)
	assert.Equal(t, 2, repo.reads, "write must drop the snapshot and force a reload")

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionConfigurationEdit, audit.logs[0].Action)
}

func TestConfigurationUpdateRejectsEmptyPayload(t *testing.T) {
	svc := NewConfigurationService(&configurationRepoStub{}, &auditRecorderStub{}, nil, nil)

	_, err := svc.UpdateCalendar(context.Background(), dto.UpdateCalendarConfigRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConfigurationMalformedValueFallsBack(t *testing.T) {
	repo := &configurationRepoStub{items: map[string]models.Configuration{
		models.ConfigKeyFirstSemStart: {Key: models.ConfigKeyFirstSemStart, Value: "garbage"},
		models.ConfigKeySFCTotalFee:   {Key: models.ConfigKeySFCTotalFee, Value: "-5"},
	}}
	svc := NewConfigurationService(repo, &auditRecorderStub{}, nil, nil)

	calendar, err := svc.Calendar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, calendar.FirstSemStart.Month)

	fees, err := svc.FeePolicy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(70000), fees.SFCTotal)
}
