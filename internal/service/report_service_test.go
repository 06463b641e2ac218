package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/export"
	"github.com/noah-isme/college-portal-api/pkg/jobs"
)

type reportRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (s *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *reportRepoStub) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	if job, ok := s.jobs[id]; ok {
		clone := *job
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *reportRepoStub) MarkProcessing(ctx context.Context, id string) error {
	s.jobs[id].Status = models.ReportStatusProcessing
	return nil
}

func (s *reportRepoStub) MarkFinished(ctx context.Context, id, resultURL string, finishedAt time.Time) error {
	job := s.jobs[id]
	job.Status = models.ReportStatusFinished
	job.ResultURL = &resultURL
	job.FinishedAt = &finishedAt
	return nil
}

func (s *reportRepoStub) MarkFailed(ctx context.Context, id, message string, finishedAt time.Time) error {
	job := s.jobs[id]
	job.Status = models.ReportStatusFailed
	job.ErrorMessage = &message
	job.FinishedAt = &finishedAt
	return nil
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (s *queueStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

type studentListStub struct {
	students []models.Student
}

func (s *studentListStub) ListActive(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

type ledgerSumStub struct {
	govt map[string]int64
	self map[string]int64
}

func (s *ledgerSumStub) SanctionAmountsByStudent(ctx context.Context, academicYear string) (map[string]int64, map[string]int64, error) {
	return s.govt, s.self, nil
}

func reportFixture() (*reportRepoStub, *queueStub, *storeStub, *ReportService) {
	repo := newReportRepoStub()
	queue := &queueStub{}
	students := &studentListStub{students: []models.Student{
		{ID: "stu-1", RollNumber: "22567T0501", FullName: "K. Ramesh", QualifyingExam: "EAMCET"},
		{ID: "stu-2", RollNumber: "23567571 2L", FullName: "unparseable"},
		{ID: "stu-3", RollNumber: "235675702L", FullName: "D. Anitha", QualifyingExam: "ECET"},
	}}
	ledger := &ledgerSumStub{
		govt: map[string]int64{"stu-1": 35000},
		self: map[string]int64{"stu-3": 70000},
	}
	store := &storeStub{}
	svc := NewReportService(repo, students, ledger, defaultConfigStub(), queue, export.NewCSVExporter(), store, signerStub{}, nil,
		fixedClock(time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)), nil)
	return repo, queue, store, svc
}

func TestCreateReportJobQueues(t *testing.T) {
	repo, queue, _, svc := reportFixture()

	job, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{
		Type:         "student_roster",
		AcademicYear: "2024-25",
	}, &models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.Equal(t, "admin-1", job.CreatedBy)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].ID)
	assert.Contains(t, repo.jobs, job.ID)
}

func TestCreateReportJobScholarshipRequiresYear(t *testing.T) {
	_, _, _, svc := reportFixture()

	_, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{Type: "scholarship_status"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProcessJobRosterSkipsUnparseable(t *testing.T) {
	repo, _, store, svc := reportFixture()

	job, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{Type: "student_roster"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessJob(context.Background(), jobs.Job{ID: job.ID, Type: string(job.Type)}))

	stored := repo.jobs[job.ID]
	assert.Equal(t, models.ReportStatusFinished, stored.Status)
	require.NotNil(t, stored.ResultURL)
	assert.Contains(t, *stored.ResultURL, "/api/v1/reports/download?token=")

	csv := string(store.saved["reports/student_roster/"+job.ID+".csv"])
	assert.Contains(t, csv, "22567T0501")
	assert.Contains(t, csv, "235675702L")
	assert.NotContains(t, csv, "unparseable")
}

func TestProcessJobScholarshipStatus(t *testing.T) {
	repo, _, store, svc := reportFixture()

	job, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{
		Type:         "scholarship_status",
		AcademicYear: "2024-25",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessJob(context.Background(), jobs.Job{ID: job.ID, Type: string(job.Type)}))
	assert.Equal(t, models.ReportStatusFinished, repo.jobs[job.ID].Status)

	csv := string(store.saved["reports/scholarship_status/"+job.ID+".csv"])
	// stu-1 is CSE (non-SFC, 35000) fully covered by the sanction
	assert.Contains(t, csv, "22567T0501,K. Ramesh,CSE,NON_SFC,35000,35000,0,0,COMPLETED")
	// stu-3 is CSD (SFC, 70000) fully self paid
	assert.Contains(t, csv, "235675702L,D. Anitha,CSD,SFC,70000,0,70000,0,COMPLETED")
}

func TestGetStatusClerkOwnership(t *testing.T) {
	_, _, _, svc := reportFixture()

	job, err := svc.CreateJob(context.Background(), dto.CreateReportRequest{Type: "student_roster"},
		&models.JWTClaims{UserID: "clerk-1", Role: models.RoleClerk})
	require.NoError(t, err)

	_, err = svc.GetStatus(context.Background(), job.ID, &models.JWTClaims{UserID: "clerk-2", Role: models.RoleClerk})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	got, err := svc.GetStatus(context.Background(), job.ID, &models.JWTClaims{UserID: "clerk-1", Role: models.RoleClerk})
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}
