package dto

import "time"

// RecordSanctionRequest captures a scholarship event for one academic year.
// Only the application number is mandatory; proceeding number, amount and
// sanction date arrive later for most students.
type RecordSanctionRequest struct {
	AcademicYear  string     `json:"academic_year" validate:"required"`
	ApplicationNo string     `json:"application_no" validate:"required"`
	ProceedingNo  *string    `json:"proceeding_no,omitempty"`
	Amount        *int64     `json:"amount,omitempty" validate:"omitempty,gt=0"`
	SanctionDate  *time.Time `json:"sanction_date,omitempty"`
}

// RecordPaymentRequest records a self-paid fee transaction.
type RecordPaymentRequest struct {
	AcademicYear   string     `json:"academic_year" validate:"required"`
	TransactionRef string     `json:"transaction_ref" validate:"required"`
	Amount         int64      `json:"amount" validate:"required,gt=0"`
	PaidOn         *time.Time `json:"paid_on,omitempty"`
}