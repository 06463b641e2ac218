package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type summaryStudentRepository interface {
	FindByRollNumber(ctx context.Context, roll string) (*models.Student, error)
}

type summaryLedgerRepository interface {
	FetchLedger(ctx context.Context, studentID, academicYear string) (*models.Ledger, error)
}

type academicConfigProvider interface {
	Calendar(ctx context.Context) (academic.CalendarConfig, error)
	FeePolicy(ctx context.Context) (academic.FeePolicy, error)
}

// Clock supplies the current instant. Injected so positional math is
// deterministic under test.
type Clock func() time.Time

// SummaryService derives the combined academic and fee snapshot for a
// student. Nothing it returns is read from storage directly; branch, year,
// semester and balances are all recomputed per request.
type SummaryService struct {
	students summaryStudentRepository
	ledger   summaryLedgerRepository
	configs  academicConfigProvider
	clock    Clock
	logger   *zap.Logger
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(students summaryStudentRepository, ledger summaryLedgerRepository, configs academicConfigProvider, clock Clock, logger *zap.Logger) *SummaryService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{students: students, ledger: ledger, configs: configs, clock: clock, logger: logger}
}

// GetStudentSummary resolves the roll number, positions the student in the
// programme calendar and reduces the scholarship ledger for the requested
// academic year. An empty academicYear defaults to the student's current
// study year.
func (s *SummaryService) GetStudentSummary(ctx context.Context, roll, academicYear string) (*dto.StudentSummary, error) {
	rn, err := academic.ParseRollNumber(roll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnparseableRoll.Code, appErrors.ErrUnparseableRoll.Status, "roll number format not recognized")
	}

	student, err := s.students.FindByRollNumber(ctx, rn.Raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	calendar, err := s.configs.Calendar(ctx)
	if err != nil {
		s.logger.Warn("calendar configuration unavailable, using defaults", zap.Error(err))
		calendar = academic.DefaultCalendarConfig()
	}

	now := s.clock()
	position := academic.ResolvePosition(rn, calendar, now)
	if position.Clamped {
		s.logger.Warn("student position clamped to programme span",
			zap.String("roll_number", rn.Raw),
			zap.Int("study_year", position.StudyYear))
	}

	if academicYear == "" {
		academicYear = position.StudyYearLabel
	}

	ledger, err := s.ledger.FetchLedger(ctx, student.ID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrFeeDataUnavailable.Code, appErrors.ErrFeeDataUnavailable.Status, "fee records temporarily unavailable")
	}

	policy, err := s.configs.FeePolicy(ctx)
	if err != nil {
		s.logger.Warn("fee policy configuration unavailable, using defaults", zap.Error(err))
		policy = academic.DefaultFeePolicy()
	}

	sanctionAmounts := make([]int64, 0, len(ledger.Sanctions))
	for _, sanction := range ledger.Sanctions {
		if sanction.Amount != nil {
			sanctionAmounts = append(sanctionAmounts, *sanction.Amount)
		}
	}
	paymentAmounts := make([]int64, 0, len(ledger.Payments))
	for _, payment := range ledger.Payments {
		paymentAmounts = append(paymentAmounts, payment.Amount)
	}

	return &dto.StudentSummary{
		RollNumber:    rn.Raw,
		Branch:        rn.Branch,
		AdmissionType: rn.Admission,
		EntryYear:     rn.EntryYear,
		AdmissionSpan: academic.AdmissionSpanLabel(rn),
		Position:      position,
		AcademicYear:  academicYear,
		FeeSummary:    academic.ComputeFeeSummary(rn.Branch, policy, sanctionAmounts, paymentAmounts),
	}, nil
}
