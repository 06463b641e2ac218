package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type memoryCacheStub struct {
	data map[string][]byte
}

func newMemoryCacheStub() *memoryCacheStub {
	return &memoryCacheStub{data: map[string][]byte{}}
}

func (s *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *memoryCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.data = map[string][]byte{}
	return nil
}

func dashboardFixture(cacheRepo CacheRepository) *DashboardService {
	students := &studentListStub{students: []models.Student{
		{ID: "stu-1", RollNumber: "22567T0501"},
		{ID: "stu-2", RollNumber: "not-a-roll"},
		{ID: "stu-3", RollNumber: "235675702L"},
		{ID: "stu-4", RollNumber: "22567T0502"},
	}}
	ledger := &ledgerSumStub{
		govt: map[string]int64{"stu-1": 35000},
		self: map[string]int64{"stu-3": 70000},
	}
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	}
	return NewDashboardService(students, ledger, defaultConfigStub(), cache,
		fixedClock(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)), nil, DashboardConfig{})
}

func TestDashboardOverviewAggregatesThroughParser(t *testing.T) {
	svc := dashboardFixture(nil)

	overview, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 4, overview.TotalStudents)
	assert.Equal(t, 1, overview.UnparseableRolls)

	require.Len(t, overview.Branches, 2)
	csd := overview.Branches[0]
	cse := overview.Branches[1]

	assert.Equal(t, "CSD", csd.Branch)
	assert.True(t, csd.SFC)
	assert.Equal(t, 1, csd.StudentCount)
	assert.Equal(t, 1, csd.LateralCount)
	assert.Equal(t, 1, csd.FeeCompleted)

	assert.Equal(t, "CSE", cse.Branch)
	assert.False(t, cse.SFC)
	assert.Equal(t, 2, cse.StudentCount)
	assert.Equal(t, 2, cse.RegularCount)
	assert.Equal(t, 1, cse.FeeCompleted)
	assert.Equal(t, 1, cse.FeePending)
}

func TestDashboardOverviewUsesCache(t *testing.T) {
	repo := newMemoryCacheStub()
	svc := dashboardFixture(repo)

	first, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.TotalStudents, second.TotalStudents)

	svc.InvalidateCache(context.Background())
	_, cached, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
}
