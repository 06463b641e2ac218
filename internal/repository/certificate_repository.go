package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-portal-api/internal/models"
)

// CertificateRepository logs issued certificates.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs a CertificateRepository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a certificate log row.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	if cert.IssuedAt.IsZero() {
		cert.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO certificates (id, student_id, type, academic_year_label, serial_no, file_path, issued_by, issued_at)
        VALUES (:id, :student_id, :type, :academic_year_label, :serial_no, :file_path, :issued_by, :issued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// FindByID fetches one certificate log row.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	const query = `SELECT id, student_id, type, academic_year_label, serial_no, file_path, issued_by, issued_at
        FROM certificates WHERE id = $1`
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListByStudent returns the certificates issued to one student, newest first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	const query = `SELECT id, student_id, type, academic_year_label, serial_no, file_path, issued_by, issued_at
        FROM certificates WHERE student_id = $1 ORDER BY issued_at DESC`
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, studentID); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

// NextSerial returns the running serial count for a certificate type within
// one calendar year. The service formats it into the printed serial number.
func (r *CertificateRepository) NextSerial(ctx context.Context, certType models.CertificateType, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM certificates WHERE type = $1 AND EXTRACT(YEAR FROM issued_at) = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, certType, year); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return count + 1, nil
}
