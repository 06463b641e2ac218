package dto

import (
	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/models"
)

// StudentSummary is the caller-facing academic and fee snapshot for one
// student. Everything in it is derived fresh per request.
type StudentSummary struct {
	RollNumber    string                 `json:"roll_number"`
	Branch        string                 `json:"branch"`
	AdmissionType academic.AdmissionType `json:"admission_type"`
	EntryYear     int                    `json:"entry_year"`
	AdmissionSpan string                 `json:"admission_span"`
	Position      academic.Position      `json:"position"`
	AcademicYear  string                 `json:"academic_year"`
	FeeSummary    academic.FeeSummary    `json:"fee_summary"`
}

// LedgerResponse returns the raw sanction and payment rows for one year.
type LedgerResponse struct {
	AcademicYear string                       `json:"academic_year"`
	Sanctions    []models.ScholarshipSanction `json:"sanctions"`
	Payments     []models.FeePayment          `json:"payments"`
}
