package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/export"
)

type certRepoStub struct {
	created []*models.Certificate
	byID    map[string]*models.Certificate
	serial  int
}

func (s *certRepoStub) Create(ctx context.Context, cert *models.Certificate) error {
	s.created = append(s.created, cert)
	if s.byID == nil {
		s.byID = map[string]*models.Certificate{}
	}
	s.byID[cert.ID] = cert
	return nil
}

func (s *certRepoStub) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	if cert, ok := s.byID[id]; ok {
		return cert, nil
	}
	return nil, sql.ErrNoRows
}

func (s *certRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	out := []models.Certificate{}
	for _, cert := range s.byID {
		if cert.StudentID == studentID {
			out = append(out, *cert)
		}
	}
	return out, nil
}

func (s *certRepoStub) NextSerial(ctx context.Context, certType models.CertificateType, year int) (int, error) {
	s.serial++
	return s.serial, nil
}

type rendererStub struct {
	last export.CertificateData
	err  error
}

func (s *rendererStub) Render(data export.CertificateData) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.last = data
	return []byte("%PDF-stub"), nil
}

type storeStub struct {
	saved map[string][]byte
}

func (s *storeStub) Save(filename string, data []byte) (string, error) {
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return filename, nil
}

func (s *storeStub) Open(filename string) (*os.File, error) {
	if _, ok := s.saved[filename]; !ok {
		return nil, errors.New("file missing")
	}
	return nil, nil
}

type signerStub struct{}

func (signerStub) Generate(resourceID, relPath string) (string, time.Time, error) {
	return resourceID + ".token", time.Now().Add(time.Hour), nil
}

func (signerStub) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	return "", "", time.Time{}, errors.New("not signed here")
}

func certificateFixture() (*certRepoStub, *rendererStub, *storeStub, *CertificateService) {
	students := &studentLookupStub{students: map[string]*models.Student{
		"22567T0501": {ID: "stu-1", RollNumber: "22567T0501", FullName: "K. Ramesh", FatherName: "K. Suresh"},
	}}
	certs := &certRepoStub{}
	renderer := &rendererStub{}
	store := &storeStub{}
	svc := NewCertificateService(students, certs, defaultConfigStub(), renderer, store, signerStub{}, &auditRecorderStub{}, nil,
		fixedClock(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)), nil,
		CertificateConfig{CollegeName: "SVCET", CollegePlace: "Chittoor"})
	return certs, renderer, store, svc
}

func TestIssueCertificateRendersAndLogs(t *testing.T) {
	certs, renderer, store, svc := certificateFixture()

	resp, err := svc.Issue(context.Background(), "22567T0501", dto.IssueCertificateRequest{
		Type:    "BONAFIDE",
		Purpose: "bank loan",
	}, &models.JWTClaims{UserID: "clerk-1"})
	require.NoError(t, err)

	assert.Equal(t, "BONAFIDE-2024-001", resp.SerialNo)
	assert.Equal(t, "2024-25", resp.AcademicYearLabel)
	assert.Contains(t, resp.DownloadURL, ".token")

	require.Len(t, certs.created, 1)
	assert.Equal(t, "clerk-1", certs.created[0].IssuedBy)
	assert.Equal(t, "certificates/2024/BONAFIDE-2024-001.pdf", certs.created[0].FilePath)
	assert.Contains(t, store.saved, "certificates/2024/BONAFIDE-2024-001.pdf")

	assert.Equal(t, "SVCET", renderer.last.CollegeName)
	assert.Equal(t, "K. Ramesh", renderer.last.StudentName)
	assert.Equal(t, "CSE", renderer.last.Branch)
	assert.Equal(t, "V", renderer.last.Semester)
	assert.Equal(t, "bank loan", renderer.last.Purpose)
}

func TestIssueCertificateSerialIncrementsPerIssue(t *testing.T) {
	_, _, _, svc := certificateFixture()

	first, err := svc.Issue(context.Background(), "22567T0501", dto.IssueCertificateRequest{Type: "STUDY"}, nil)
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), "22567T0501", dto.IssueCertificateRequest{Type: "STUDY"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "STUDY-2024-001", first.SerialNo)
	assert.Equal(t, "STUDY-2024-002", second.SerialNo)
}

func TestIssueCertificateUnknownStudent(t *testing.T) {
	_, _, _, svc := certificateFixture()

	_, err := svc.Issue(context.Background(), "21567T0409", dto.IssueCertificateRequest{Type: "CONDUCT"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestIssueCertificateRenderFailure(t *testing.T) {
	_, renderer, store, svc := certificateFixture()
	renderer.err = errors.New("font missing")

	_, err := svc.Issue(context.Background(), "22567T0501", dto.IssueCertificateRequest{Type: "BONAFIDE"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.saved)
}
