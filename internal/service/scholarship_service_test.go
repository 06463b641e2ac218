package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type ledgerWriteStub struct {
	ledger    *models.Ledger
	upserted  *models.SanctionEvent
	upsertKey string
	payments  []*models.FeePayment
	err       error
}

func (s *ledgerWriteStub) FetchLedger(ctx context.Context, studentID, academicYear string) (*models.Ledger, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.ledger != nil {
		return s.ledger, nil
	}
	return &models.Ledger{Sanctions: []models.ScholarshipSanction{}, Payments: []models.FeePayment{}}, nil
}

func (s *ledgerWriteStub) UpsertSanction(ctx context.Context, studentID, academicYear string, event models.SanctionEvent) (*models.ScholarshipSanction, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.upserted = &event
	s.upsertKey = studentID + "|" + academicYear
	return &models.ScholarshipSanction{
		ID:            "sanction-1",
		StudentID:     studentID,
		AcademicYear:  academicYear,
		ApplicationNo: event.ApplicationNo,
		ProceedingNo:  event.ProceedingNo,
		Amount:        event.Amount,
		SanctionDate:  event.SanctionDate,
	}, nil
}

func (s *ledgerWriteStub) InsertPayment(ctx context.Context, payment *models.FeePayment) error {
	if s.err != nil {
		return s.err
	}
	s.payments = append(s.payments, payment)
	return nil
}

type auditRecorderStub struct {
	logs []*models.AuditLog
}

func (a *auditRecorderStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func scholarshipFixture() (*studentLookupStub, *ledgerWriteStub, *auditRecorderStub, *ScholarshipService) {
	students := &studentLookupStub{students: map[string]*models.Student{
		"22567T0501": {ID: "stu-1", RollNumber: "22567T0501"},
	}}
	ledger := &ledgerWriteStub{}
	audit := &auditRecorderStub{}
	svc := NewScholarshipService(students, ledger, defaultConfigStub(), audit, nil,
		fixedClock(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)), nil)
	return students, ledger, audit, svc
}

func TestRecordSanctionPassesEventThrough(t *testing.T) {
	_, ledger, audit, svc := scholarshipFixture()

	proceeding := "PRO-9"
	amount := int64(20000)
	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	row, err := svc.RecordSanction(context.Background(), "22567T0501", dto.RecordSanctionRequest{
		AcademicYear:  "2024-25",
		ApplicationNo: "APP-1",
		ProceedingNo:  &proceeding,
		Amount:        &amount,
		SanctionDate:  &date,
	}, &models.JWTClaims{UserID: "clerk-1"})
	require.NoError(t, err)

	assert.Equal(t, "stu-1|2024-25", ledger.upsertKey)
	require.NotNil(t, ledger.upserted)
	assert.Equal(t, "APP-1", ledger.upserted.ApplicationNo)
	assert.Equal(t, "PRO-9", *row.ProceedingNo)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSanctionUpsert, audit.logs[0].Action)
	assert.Equal(t, "clerk-1", *audit.logs[0].UserID)
}

func TestRecordSanctionApplicationOnly(t *testing.T) {
	_, ledger, _, svc := scholarshipFixture()

	row, err := svc.RecordSanction(context.Background(), "22567T0501", dto.RecordSanctionRequest{
		AcademicYear:  "2024-25",
		ApplicationNo: "APP-1",
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, row.ProceedingNo)
	assert.Nil(t, row.Amount)
	assert.Nil(t, ledger.upserted.Amount)
}

func TestRecordSanctionRejectsInconsistentPayloads(t *testing.T) {
	_, _, _, svc := scholarshipFixture()

	amount := int64(5000)
	_, err := svc.RecordSanction(context.Background(), "22567T0501", dto.RecordSanctionRequest{
		AcademicYear:  "2024-25",
		ApplicationNo: "APP-1",
		Amount:        &amount,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	proceeding := "PRO-9"
	_, err = svc.RecordSanction(context.Background(), "22567T0501", dto.RecordSanctionRequest{
		AcademicYear:  "2024-25",
		ApplicationNo: "APP-1",
		ProceedingNo:  &proceeding,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordPaymentDefaultsPaidOn(t *testing.T) {
	_, ledger, audit, svc := scholarshipFixture()

	payment, err := svc.RecordPayment(context.Background(), "22567T0501", dto.RecordPaymentRequest{
		AcademicYear:   "2024-25",
		TransactionRef: "TXN-77",
		Amount:         15000,
	}, &models.JWTClaims{UserID: "clerk-1"})
	require.NoError(t, err)

	require.Len(t, ledger.payments, 1)
	assert.Equal(t, "stu-1", payment.StudentID)
	assert.Equal(t, time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC), payment.PaidOn)
	assert.NotEmpty(t, payment.ID)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPaymentInsert, audit.logs[0].Action)
}

func TestGetLedgerUnknownStudent(t *testing.T) {
	_, _, _, svc := scholarshipFixture()

	_, err := svc.GetLedger(context.Background(), "29567T0101", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetLedgerDefaultsAcademicYear(t *testing.T) {
	_, _, _, svc := scholarshipFixture()

	resp, err := svc.GetLedger(context.Background(), "22567T0501", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-25", resp.AcademicYear)
	assert.Empty(t, resp.Sanctions)
	assert.Empty(t, resp.Payments)
}
