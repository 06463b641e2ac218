package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type studentRepoStub struct {
	byID    map[string]*models.Student
	byRoll  map[string]*models.Student
	created []*models.Student
	updated []*models.Student
	err     error
}

func newStudentRepoStub() *studentRepoStub {
	return &studentRepoStub{byID: map[string]*models.Student{}, byRoll: map[string]*models.Student{}}
}

func (s *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	students := make([]models.Student, 0, len(s.byID))
	for _, student := range s.byID {
		students = append(students, *student)
	}
	return students, len(students), nil
}

func (s *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	if student, ok := s.byID[id]; ok {
		clone := *student
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) FindByRollNumber(ctx context.Context, roll string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	if student, ok := s.byRoll[roll]; ok {
		clone := *student
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentRepoStub) ExistsByRollNumber(ctx context.Context, roll string, excludeID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.byRoll[roll]
	return ok, nil
}

func (s *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, student)
	s.byID[student.ID] = student
	s.byRoll[student.RollNumber] = student
	return nil
}

func (s *studentRepoStub) Update(ctx context.Context, student *models.Student) error {
	if s.err != nil {
		return s.err
	}
	s.updated = append(s.updated, student)
	s.byID[student.ID] = student
	return nil
}

func (s *studentRepoStub) Deactivate(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if student, ok := s.byID[id]; ok {
		student.Active = false
	}
	return nil
}

func TestStudentCreatePrefillsQualifyingExam(t *testing.T) {
	repo := newStudentRepoStub()
	audit := &auditRecorderStub{}
	svc := NewStudentService(repo, audit, nil, nil)

	resp, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNumber: "23567T1203",
		FullName:   "P. Lavanya",
	}, &models.JWTClaims{UserID: "clerk-1"})
	require.NoError(t, err)

	assert.Equal(t, "EAMCET", resp.QualifyingExam)
	assert.Equal(t, "IT", resp.Branch)
	assert.Equal(t, "REGULAR", resp.AdmissionType)
	assert.Equal(t, 2023, resp.EntryYear)
	assert.True(t, resp.Active)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionStudentCreate, audit.logs[0].Action)
}

func TestStudentCreateKeepsSuppliedExam(t *testing.T) {
	svc := NewStudentService(newStudentRepoStub(), &auditRecorderStub{}, nil, nil)

	resp, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNumber:     "235670502L",
		FullName:       "B. Kiran",
		QualifyingExam: "ECET",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ECET", resp.QualifyingExam)
	assert.Equal(t, "LATERAL", resp.AdmissionType)
}

func TestStudentCreateRejectsMalformedRoll(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, &auditRecorderStub{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNumber: "22999T0501",
		FullName:   "X",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnparseableRoll.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestStudentCreateDuplicateRoll(t *testing.T) {
	repo := newStudentRepoStub()
	repo.byRoll["22567T0501"] = &models.Student{ID: "stu-1", RollNumber: "22567T0501"}
	svc := NewStudentService(repo, &auditRecorderStub{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		RollNumber: "22567T0501",
		FullName:   "Duplicate",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateAppliesPartialFields(t *testing.T) {
	repo := newStudentRepoStub()
	repo.byID["stu-1"] = &models.Student{ID: "stu-1", RollNumber: "22567T0501", FullName: "Old Name", Phone: "111"}
	svc := NewStudentService(repo, &auditRecorderStub{}, nil, nil)

	name := "New Name"
	resp, err := svc.Update(context.Background(), "stu-1", dto.UpdateStudentRequest{FullName: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", resp.FullName)
	assert.Equal(t, "111", resp.Phone)
}

func TestStudentDeactivate(t *testing.T) {
	repo := newStudentRepoStub()
	repo.byID["stu-1"] = &models.Student{ID: "stu-1", RollNumber: "22567T0501", Active: true}
	audit := &auditRecorderStub{}
	svc := NewStudentService(repo, audit, nil, nil)

	require.NoError(t, svc.Deactivate(context.Background(), "stu-1", nil))
	assert.False(t, repo.byID["stu-1"].Active)
	require.Len(t, audit.logs, 1)

	err := svc.Deactivate(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
