package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/export"
)

type certificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error)
	NextSerial(ctx context.Context, certType models.CertificateType, year int) (int, error)
}

type certificateRenderer interface {
	Render(data export.CertificateData) ([]byte, error)
}

type artifactStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type artifactSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

type certificateAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CertificateConfig carries the letterhead identity.
type CertificateConfig struct {
	CollegeName  string
	CollegePlace string
}

var certificateTitles = map[models.CertificateType]string{
	models.CertificateBonafide: "Bonafide Certificate",
	models.CertificateStudy:    "Study Certificate",
	models.CertificateConduct:  "Conduct Certificate",
}

// CertificateService renders institutional certificates, stores the PDF and
// keeps an issuance log. Serials restart every calendar year per type.
type CertificateService struct {
	students  summaryStudentRepository
	certs     certificateRepository
	configs   academicConfigProvider
	renderer  certificateRenderer
	store     artifactStore
	signer    artifactSigner
	audit     certificateAuditLogger
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
	config    CertificateConfig
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(students summaryStudentRepository, certs certificateRepository, configs academicConfigProvider, renderer certificateRenderer, store artifactStore, signer artifactSigner, audit certificateAuditLogger, validate *validator.Validate, clock Clock, logger *zap.Logger, config CertificateConfig) *CertificateService {
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		students:  students,
		certs:     certs,
		configs:   configs,
		renderer:  renderer,
		store:     store,
		signer:    signer,
		audit:     audit,
		validator: validate,
		clock:     clock,
		logger:    logger,
		config:    config,
	}
}

// Issue renders and stores a certificate for the student, returning a signed
// download URL alongside the log entry.
func (s *CertificateService) Issue(ctx context.Context, roll string, req dto.IssueCertificateRequest, actor *models.JWTClaims) (*dto.CertificateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload")
	}

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

	yearLabel := req.AcademicYear
	if yearLabel == "" {
		yearLabel = position.StudyYearLabel
	}

	certType := models.CertificateType(req.Type)
	serial, err := s.certs.NextSerial(ctx, certType, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate certificate serial")
	}
	serialNo := fmt.Sprintf("%s-%d-%03d", certType, now.Year(), serial)

	pdfBytes, err := s.renderer.Render(export.CertificateData{
		CollegeName:  s.config.CollegeName,
		CollegePlace: s.config.CollegePlace,
		Title:        certificateTitles[certType],
		SerialNo:     serialNo,
		StudentName:  student.FullName,
		FatherName:   student.FatherName,
		RollNumber:   rn.Raw,
		Branch:       rn.Branch,
		StudyYear:    position.StudyYearLabel,
		Semester:     position.SemesterLabel,
		AcademicYear: yearLabel,
		Purpose:      req.Purpose,
		IssuedOn:     now,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	relPath := fmt.Sprintf("certificates/%d/%s.pdf", now.Year(), serialNo)
	if _, err := s.store.Save(relPath, pdfBytes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}

	cert := &models.Certificate{
		ID:                uuid.NewString(),
		StudentID:         student.ID,
		Type:              certType,
		AcademicYearLabel: yearLabel,
		SerialNo:          serialNo,
		FilePath:          relPath,
		IssuedAt:          now,
	}
	if actor != nil {
		cert.IssuedBy = actor.UserID
	}

	if err := s.certs.Create(ctx, cert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log certificate")
	}

	token, _, err := s.signer.Generate(cert.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	s.recordAudit(ctx, actor, cert.ID, req)

	return &dto.CertificateResponse{
		ID:                cert.ID,
		Type:              string(cert.Type),
		SerialNo:          cert.SerialNo,
		AcademicYearLabel: cert.AcademicYearLabel,
		DownloadURL:       fmt.Sprintf("/api/v1/certificates/download?token=%s", token),
	}, nil
}

// Download validates the signed token and opens the stored PDF.
func (s *CertificateService) Download(ctx context.Context, token string) (*os.File, *models.Certificate, error) {
	certID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	cert, err := s.certs.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}

	if cert.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match certificate")
	}

	file, err := s.store.Open(cert.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open certificate file")
	}
	return file, cert, nil
}

// ListByStudent returns the issuance history for one student.
func (s *CertificateService) ListByStudent(ctx context.Context, roll string) ([]models.Certificate, error) {
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

	certs, err := s.certs.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	return certs, nil
}

func (s *CertificateService) recordAudit(ctx context.Context, actor *models.JWTClaims, certID string, payload interface{}) {
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
		Action:     models.AuditActionCertificateIssue,
		Resource:   "certificate",
		ResourceID: &certID,
		NewValues:  values,
	}); err != nil {
		s.logger.Warn("failed to record certificate audit log", zap.Error(err))
	}
}
