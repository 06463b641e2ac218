package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-portal-api/internal/models"
)

const sanctionColumns = "id, student_id, academic_year, application_no, proceeding_no, amount, sanction_date, created_at, updated_at"

// LedgerRepository persists scholarship sanctions and self-paid fee
// transactions, both scoped to (student, academic year).
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs a LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// FetchLedger loads every sanction and payment row for one student year,
// ordered by date ascending. An empty ledger is a valid result, distinct
// from a fetch error.
func (r *LedgerRepository) FetchLedger(ctx context.Context, studentID, academicYear string) (*models.Ledger, error) {
	sanctionQuery := fmt.Sprintf(`SELECT %s FROM scholarship_sanctions
        WHERE student_id = $1 AND academic_year = $2
        ORDER BY sanction_date ASC NULLS LAST, created_at ASC`, sanctionColumns)
	var sanctions []models.ScholarshipSanction
	if err := r.db.SelectContext(ctx, &sanctions, sanctionQuery, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("fetch sanctions: %w", err)
	}

	const paymentQuery = `SELECT id, student_id, academic_year, transaction_ref, amount, paid_on, created_at FROM fee_payments
        WHERE student_id = $1 AND academic_year = $2
        ORDER BY paid_on ASC, created_at ASC`
	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, paymentQuery, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("fetch payments: %w", err)
	}

	return &models.Ledger{Sanctions: sanctions, Payments: payments}, nil
}

// UpsertSanction applies one sanction event using the three way policy:
// update the row carrying the same proceeding number, otherwise promote the
// base row (no proceeding number yet), otherwise insert a new row. Events
// without a proceeding number only touch the application number on the base
// row, creating it when absent. The whole decision runs inside a transaction
// with the student's rows locked, so concurrent events cannot duplicate or
// orphan rows.
func (r *LedgerRepository) UpsertSanction(ctx context.Context, studentID, academicYear string, event models.SanctionEvent) (*models.ScholarshipSanction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sanction tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery := fmt.Sprintf(`SELECT %s FROM scholarship_sanctions
        WHERE student_id = $1 AND academic_year = $2
        ORDER BY created_at ASC FOR UPDATE`, sanctionColumns)
	var rows []models.ScholarshipSanction
	if err := tx.SelectContext(ctx, &rows, lockQuery, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("lock sanctions: %w", err)
	}

	now := time.Now().UTC()
	var result *models.ScholarshipSanction

	switch {
	case event.ProceedingNo != nil:
		if row := findByProceeding(rows, *event.ProceedingNo); row != nil {
			result, err = r.updateSanction(ctx, tx, row, event, now)
		} else if base := findBaseRow(rows); base != nil {
			result, err = r.updateSanction(ctx, tx, base, event, now)
		} else {
			result, err = r.insertSanction(ctx, tx, studentID, academicYear, event, now)
		}
	default:
		if base := findBaseRow(rows); base != nil {
			base.ApplicationNo = event.ApplicationNo
			base.UpdatedAt = now
			const query = `UPDATE scholarship_sanctions SET application_no = :application_no, updated_at = :updated_at WHERE id = :id`
			if _, execErr := tx.NamedExecContext(ctx, query, base); execErr != nil {
				err = fmt.Errorf("update application no: %w", execErr)
			} else {
				result = base
			}
		} else {
			result, err = r.insertSanction(ctx, tx, studentID, academicYear, event, now)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sanction tx: %w", err)
	}
	return result, nil
}

func (r *LedgerRepository) updateSanction(ctx context.Context, tx *sqlx.Tx, row *models.ScholarshipSanction, event models.SanctionEvent, now time.Time) (*models.ScholarshipSanction, error) {
	if event.ApplicationNo != "" {
		row.ApplicationNo = event.ApplicationNo
	}
	row.ProceedingNo = event.ProceedingNo
	row.Amount = event.Amount
	row.SanctionDate = event.SanctionDate
	row.UpdatedAt = now
	const query = `UPDATE scholarship_sanctions
        SET application_no = :application_no, proceeding_no = :proceeding_no, amount = :amount, sanction_date = :sanction_date, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return nil, fmt.Errorf("update sanction: %w", err)
	}
	return row, nil
}

func (r *LedgerRepository) insertSanction(ctx context.Context, tx *sqlx.Tx, studentID, academicYear string, event models.SanctionEvent, now time.Time) (*models.ScholarshipSanction, error) {
	row := &models.ScholarshipSanction{
		ID:            uuid.NewString(),
		StudentID:     studentID,
		AcademicYear:  academicYear,
		ApplicationNo: event.ApplicationNo,
		ProceedingNo:  event.ProceedingNo,
		Amount:        event.Amount,
		SanctionDate:  event.SanctionDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	const query = `INSERT INTO scholarship_sanctions (id, student_id, academic_year, application_no, proceeding_no, amount, sanction_date, created_at, updated_at)
        VALUES (:id, :student_id, :academic_year, :application_no, :proceeding_no, :amount, :sanction_date, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return nil, fmt.Errorf("insert sanction: %w", err)
	}
	return row, nil
}

// InsertPayment records a self-paid transaction.
func (r *LedgerRepository) InsertPayment(ctx context.Context, payment *models.FeePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO fee_payments (id, student_id, academic_year, transaction_ref, amount, paid_on, created_at)
        VALUES (:id, :student_id, :academic_year, :transaction_ref, :amount, :paid_on, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// SanctionAmountsByStudent sums sanctioned and self-paid amounts per student
// for one academic year. Used by the dashboard and report aggregations.
func (r *LedgerRepository) SanctionAmountsByStudent(ctx context.Context, academicYear string) (map[string]int64, map[string]int64, error) {
	type totalRow struct {
		StudentID string `db:"student_id"`
		Total     int64  `db:"total"`
	}

	var sanctioned []totalRow
	const sanctionQuery = `SELECT student_id, COALESCE(SUM(amount), 0) AS total FROM scholarship_sanctions
        WHERE academic_year = $1 GROUP BY student_id`
	if err := r.db.SelectContext(ctx, &sanctioned, sanctionQuery, academicYear); err != nil {
		return nil, nil, fmt.Errorf("sum sanctions: %w", err)
	}

	var paid []totalRow
	const paymentQuery = `SELECT student_id, COALESCE(SUM(amount), 0) AS total FROM fee_payments
        WHERE academic_year = $1 GROUP BY student_id`
	if err := r.db.SelectContext(ctx, &paid, paymentQuery, academicYear); err != nil {
		return nil, nil, fmt.Errorf("sum payments: %w", err)
	}

	govt := make(map[string]int64, len(sanctioned))
	for _, row := range sanctioned {
		govt[row.StudentID] = row.Total
	}
	self := make(map[string]int64, len(paid))
	for _, row := range paid {
		self[row.StudentID] = row.Total
	}
	return govt, self, nil
}

func findByProceeding(rows []models.ScholarshipSanction, proceedingNo string) *models.ScholarshipSanction {
	for i := range rows {
		if rows[i].ProceedingNo != nil && *rows[i].ProceedingNo == proceedingNo {
			return &rows[i]
		}
	}
	return nil
}

func findBaseRow(rows []models.ScholarshipSanction) *models.ScholarshipSanction {
	for i := range rows {
		if rows[i].ProceedingNo == nil {
			return &rows[i]
		}
	}
	return nil
}
