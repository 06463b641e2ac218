package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

const dashboardCacheKey = "dash:overview"

type dashboardStudentSource interface {
	ListActive(ctx context.Context) ([]models.Student, error)
}

type dashboardLedgerSource interface {
	SanctionAmountsByStudent(ctx context.Context, academicYear string) (map[string]int64, map[string]int64, error)
}

// DashboardConfig tunes the cached overview.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// DashboardService aggregates the admin landing view. Branch membership is
// never read from storage; every roll number is pushed through the parser,
// so the overview doubles as a data quality report via the unparseable
// counter.
type DashboardService struct {
	students dashboardStudentSource
	ledger   dashboardLedgerSource
	configs  academicConfigProvider
	cache    *CacheService
	clock    Clock
	logger   *zap.Logger
	cfg      DashboardConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students dashboardStudentSource, ledger dashboardLedgerSource, configs academicConfigProvider, cache *CacheService, clock Clock, logger *zap.Logger, cfg DashboardConfig) *DashboardService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		students: students,
		ledger:   ledger,
		configs:  configs,
		cache:    cache,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
}

// Overview returns the aggregated dashboard, indicating cache utilisation.
func (s *DashboardService) Overview(ctx context.Context) (*models.DashboardOverview, bool, error) {
	if s.cache != nil {
		var cached models.DashboardOverview
		if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	overview, err := s.build(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, overview, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}

	return overview, false, nil
}

// InvalidateCache drops the cached overview. Called after ledger or roster
// writes so admins never act on stale balances.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) build(ctx context.Context) (*models.DashboardOverview, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	calendar, err := s.configs.Calendar(ctx)
	if err != nil {
		calendar = academic.DefaultCalendarConfig()
	}
	policy, err := s.configs.FeePolicy(ctx)
	if err != nil {
		policy = academic.DefaultFeePolicy()
	}

	now := s.clock()

	type parsedStudent struct {
		id        string
		rn        academic.RollNumber
		yearLabel string
	}

	parsed := make([]parsedStudent, 0, len(students))
	unparseable := 0
	yearLabels := make(map[string]struct{})
	for _, student := range students {
		rn, err := academic.ParseRollNumber(student.RollNumber)
		if err != nil {
			unparseable++
			continue
		}
		label := academic.ResolvePosition(rn, calendar, now).StudyYearLabel
		parsed = append(parsed, parsedStudent{id: student.ID, rn: rn, yearLabel: label})
		yearLabels[label] = struct{}{}
	}

	// One aggregate query per distinct study-year label in the cohort.
	govtByYear := make(map[string]map[string]int64, len(yearLabels))
	selfByYear := make(map[string]map[string]int64, len(yearLabels))
	for label := range yearLabels {
		govt, self, err := s.ledger.SanctionAmountsByStudent(ctx, label)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrFeeDataUnavailable.Code, appErrors.ErrFeeDataUnavailable.Status, "fee records temporarily unavailable")
		}
		govtByYear[label] = govt
		selfByYear[label] = self
	}

	statsByBranch := make(map[string]*models.BranchStats)
	for _, p := range parsed {
		stats, ok := statsByBranch[p.rn.Branch]
		if !ok {
			stats = &models.BranchStats{
				Branch: p.rn.Branch,
				SFC:    academic.FeeCategoryFor(p.rn.Branch) == academic.FeeCategorySFC,
			}
			statsByBranch[p.rn.Branch] = stats
		}
		stats.StudentCount++
		if p.rn.Admission == academic.AdmissionLateral {
			stats.LateralCount++
		} else {
			stats.RegularCount++
		}

		summary := academic.ComputeFeeSummary(p.rn.Branch, policy,
			[]int64{govtByYear[p.yearLabel][p.id]}, []int64{selfByYear[p.yearLabel][p.id]})
		if summary.Status == academic.FeeStatusCompleted {
			stats.FeeCompleted++
		} else {
			stats.FeePending++
		}
	}

	branches := make([]models.BranchStats, 0, len(statsByBranch))
	for _, stats := range statsByBranch {
		branches = append(branches, *stats)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Branch < branches[j].Branch })

	labels := make([]string, 0, len(yearLabels))
	for label := range yearLabels {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return &models.DashboardOverview{
		TotalStudents:      len(students),
		UnparseableRolls:   unparseable,
		Branches:           branches,
		AcademicYearLabels: labels,
		GeneratedAt:        now,
	}, nil
}
