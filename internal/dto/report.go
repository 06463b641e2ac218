package dto

// CreateReportRequest queues an asynchronous export.
type CreateReportRequest struct {
	Type         string `json:"type" validate:"required,oneof=scholarship_status student_roster"`
	AcademicYear string `json:"academic_year"`
	Branch       string `json:"branch,omitempty"`
}

// IssueCertificateRequest asks for a certificate for one student.
type IssueCertificateRequest struct {
	Type         string `json:"type" validate:"required,oneof=BONAFIDE STUDY CONDUCT"`
	AcademicYear string `json:"academic_year,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
}

// CertificateResponse returns the issued certificate log entry plus a signed
// download URL.
type CertificateResponse struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	SerialNo          string `json:"serial_no"`
	AcademicYearLabel string `json:"academic_year_label"`
	DownloadURL       string `json:"download_url"`
}
