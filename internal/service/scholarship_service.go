package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type scholarshipLedgerRepository interface {
	FetchLedger(ctx context.Context, studentID, academicYear string) (*models.Ledger, error)
	UpsertSanction(ctx context.Context, studentID, academicYear string, event models.SanctionEvent) (*models.ScholarshipSanction, error)
	InsertPayment(ctx context.Context, payment *models.FeePayment) error
}

type scholarshipAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ScholarshipService owns the write side of the fee ledger: government
// sanctions and self-paid transactions keyed by student and academic year.
type ScholarshipService struct {
	students  summaryStudentRepository
	ledger    scholarshipLedgerRepository
	configs   academicConfigProvider
	audit     scholarshipAuditLogger
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
}

// NewScholarshipService constructs a ScholarshipService.
func NewScholarshipService(students summaryStudentRepository, ledger scholarshipLedgerRepository, configs academicConfigProvider, audit scholarshipAuditLogger, validate *validator.Validate, clock Clock, logger *zap.Logger) *ScholarshipService {
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScholarshipService{
		students:  students,
		ledger:    ledger,
		configs:   configs,
		audit:     audit,
		validator: validate,
		clock:     clock,
		logger:    logger,
	}
}

// RecordSanction applies a sanction event for the student's academic year.
// The repository decides whether the event updates an existing proceeding,
// promotes a bare application row or opens a new row.
func (s *ScholarshipService) RecordSanction(ctx context.Context, roll string, req dto.RecordSanctionRequest, actor *models.JWTClaims) (*models.ScholarshipSanction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sanction payload")
	}
	if req.ProceedingNo == nil && (req.Amount != nil || req.SanctionDate != nil) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount and sanction date require a proceeding number")
	}
	if req.ProceedingNo != nil && req.Amount == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a proceeding number requires a sanctioned amount")
	}

	student, _, err := s.findStudent(ctx, roll)
	if err != nil {
		return nil, err
	}

	event := models.SanctionEvent{
		ApplicationNo: req.ApplicationNo,
		ProceedingNo:  req.ProceedingNo,
		Amount:        req.Amount,
		SanctionDate:  req.SanctionDate,
	}

	row, err := s.ledger.UpsertSanction(ctx, student.ID, req.AcademicYear, event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record sanction")
	}

	s.recordAudit(ctx, actor, models.AuditActionSanctionUpsert, "scholarship_sanction", row.ID, req)

	return row, nil
}

// RecordPayment inserts a self-paid fee transaction. Payments are append
// only; corrections happen through compensating entries.
func (s *ScholarshipService) RecordPayment(ctx context.Context, roll string, req dto.RecordPaymentRequest, actor *models.JWTClaims) (*models.FeePayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	student, _, err := s.findStudent(ctx, roll)
	if err != nil {
		return nil, err
	}

	paidOn := s.clock()
	if req.PaidOn != nil {
		paidOn = *req.PaidOn
	}

	payment := &models.FeePayment{
		ID:             uuid.NewString(),
		StudentID:      student.ID,
		AcademicYear:   req.AcademicYear,
		TransactionRef: req.TransactionRef,
		Amount:         req.Amount,
		PaidOn:         paidOn,
		CreatedAt:      s.clock(),
	}

	if err := s.ledger.InsertPayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.recordAudit(ctx, actor, models.AuditActionPaymentInsert, "fee_payment", payment.ID, req)

	return payment, nil
}

// GetLedger returns the raw sanction and payment rows for one academic year.
// An empty year defaults to the student's current study year.
func (s *ScholarshipService) GetLedger(ctx context.Context, roll, academicYear string) (*dto.LedgerResponse, error) {
	student, rn, err := s.findStudent(ctx, roll)
	if err != nil {
		return nil, err
	}

	if academicYear == "" {
		calendar, err := s.configs.Calendar(ctx)
		if err != nil {
			s.logger.Warn("calendar configuration unavailable, using defaults", zap.Error(err))
			calendar = academic.DefaultCalendarConfig()
		}
		academicYear = academic.ResolvePosition(rn, calendar, s.clock()).StudyYearLabel
	}

	ledger, err := s.ledger.FetchLedger(ctx, student.ID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrFeeDataUnavailable.Code, appErrors.ErrFeeDataUnavailable.Status, "fee records temporarily unavailable")
	}

	return &dto.LedgerResponse{
		AcademicYear: academicYear,
		Sanctions:    ledger.Sanctions,
		Payments:     ledger.Payments,
	}, nil
}

func (s *ScholarshipService) findStudent(ctx context.Context, roll string) (*models.Student, academic.RollNumber, error) {
	rn, err := academic.ParseRollNumber(roll)
	if err != nil {
		return nil, rn, appErrors.Wrap(err, appErrors.ErrUnparseableRoll.Code, appErrors.ErrUnparseableRoll.Status, "roll number format not recognized")
	}

	student, err := s.students.FindByRollNumber(ctx, rn.Raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rn, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, rn, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, rn, nil
}

func (s *ScholarshipService) recordAudit(ctx context.Context, actor *models.JWTClaims, action, resource, resourceID string, payload interface{}) {
	var userID *string
	if actor != nil {
		userID = &actor.UserID
	}
	values, err := json.Marshal(payload)
	if err != nil {
		values = nil
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		NewValues:  values,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
