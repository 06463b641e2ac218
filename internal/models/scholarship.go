package models

import "time"

// ScholarshipSanction is one government sanction row scoped to a student and
// academic year. A row may exist with only an application number while the
// student waits for an amount to be sanctioned ("base" row).
type ScholarshipSanction struct {
	ID            string     `db:"id" json:"id"`
	StudentID     string     `db:"student_id" json:"student_id"`
	AcademicYear  string     `db:"academic_year" json:"academic_year"`
	ApplicationNo string     `db:"application_no" json:"application_no"`
	ProceedingNo  *string    `db:"proceeding_no" json:"proceeding_no,omitempty"`
	Amount        *int64     `db:"amount" json:"amount,omitempty"`
	SanctionDate  *time.Time `db:"sanction_date" json:"sanction_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// FeePayment is a self-paid transaction recorded against a student for one
// academic year.
type FeePayment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	TransactionRef string    `db:"transaction_ref" json:"transaction_ref"`
	Amount         int64     `db:"amount" json:"amount"`
	PaidOn         time.Time `db:"paid_on" json:"paid_on"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SanctionEvent is the write payload for the three way sanction upsert.
// ProceedingNo, Amount and SanctionDate may all be absent when the student
// has only applied.
type SanctionEvent struct {
	ApplicationNo string     `json:"application_no"`
	ProceedingNo  *string    `json:"proceeding_no,omitempty"`
	Amount        *int64     `json:"amount,omitempty"`
	SanctionDate  *time.Time `json:"sanction_date,omitempty"`
}

// Ledger bundles the rows backing one fee summary computation.
type Ledger struct {
	Sanctions []ScholarshipSanction `json:"sanctions"`
	Payments  []FeePayment          `json:"payments"`
}
