package models

import "time"

// CertificateType enumerates the certificates the portal can issue.
type CertificateType string

const (
	CertificateBonafide CertificateType = "BONAFIDE"
	CertificateStudy    CertificateType = "STUDY"
	CertificateConduct  CertificateType = "CONDUCT"
)

// Certificate logs one issued certificate and where its rendered PDF lives.
type Certificate struct {
	ID                string          `db:"id" json:"id"`
	StudentID         string          `db:"student_id" json:"student_id"`
	Type              CertificateType `db:"type" json:"type"`
	AcademicYearLabel string          `db:"academic_year_label" json:"academic_year_label"`
	SerialNo          string          `db:"serial_no" json:"serial_no"`
	FilePath          string          `db:"file_path" json:"-"`
	IssuedBy          string          `db:"issued_by" json:"issued_by"`
	IssuedAt          time.Time       `db:"issued_at" json:"issued_at"`
}
