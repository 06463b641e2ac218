package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/export"
	"github.com/noah-isme/college-portal-api/pkg/jobs"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, resultURL string, finishedAt time.Time) error
	MarkFailed(ctx context.Context, id, message string, finishedAt time.Time) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportStudentSource interface {
	ListActive(ctx context.Context) ([]models.Student, error)
}

type reportLedgerSource interface {
	SanctionAmountsByStudent(ctx context.Context, academicYear string) (map[string]int64, map[string]int64, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ReportService queues CSV exports and processes them on a worker pool.
// Jobs survive as rows in report_jobs; the in-memory queue only carries IDs.
type ReportService struct {
	repo      reportJobStore
	students  reportStudentSource
	ledger    reportLedgerSource
	configs   academicConfigProvider
	queue     jobDispatcher
	renderer  csvRenderer
	store     artifactStore
	signer    artifactSigner
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportJobStore, students reportStudentSource, ledger reportLedgerSource, configs academicConfigProvider, queue jobDispatcher, renderer csvRenderer, store artifactStore, signer artifactSigner, validate *validator.Validate, clock Clock, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		students:  students,
		ledger:    ledger,
		configs:   configs,
		queue:     queue,
		renderer:  renderer,
		store:     store,
		signer:    signer,
		validator: validate,
		clock:     clock,
		logger:    logger,
	}
}

// SetQueue wires the dispatcher after construction. The queue handler needs
// the service, so the two are tied together at startup.
func (s *ReportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob validates the request, persists the job row and enqueues it.
func (s *ReportService) CreateJob(ctx context.Context, req dto.CreateReportRequest, actor *models.JWTClaims) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}
	reportType := models.ReportType(req.Type)
	if reportType == models.ReportTypeScholarshipStatus && req.AcademicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year is required for scholarship status reports")
	}
	if req.Branch != "" {
		if _, ok := branchKnown(req.Branch); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown branch")
		}
	}

	job := &models.ReportJob{
		ID:     uuid.NewString(),
		Type:   reportType,
		Params: models.ReportJobParams{AcademicYear: req.AcademicYear, Branch: req.Branch},
		Status: models.ReportStatusQueued,
	}
	if actor != nil {
		job.CreatedBy = actor.UserID
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "failed to enqueue job", s.clock()); markErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	return job, nil
}

// GetStatus exposes job metadata. Clerks only see their own jobs.
func (s *ReportService) GetStatus(ctx context.Context, id string, actor *models.JWTClaims) (*models.ReportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if actor != nil && actor.Role == models.RoleClerk && job.CreatedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another account")
	}
	return job, nil
}

// ProcessJob is the queue handler. A returned error triggers a retry.
func (s *ReportService) ProcessJob(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.FindByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", queued.ID, err)
	}
	if job.Status == models.ReportStatusFinished {
		return nil
	}

	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		s.logger.Warn("failed to mark report processing", zap.String("job_id", job.ID), zap.Error(err))
	}

	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	payload, err := s.renderer.Render(dataset)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	relPath := fmt.Sprintf("reports/%s/%s.csv", job.Type, job.ID)
	if _, err := s.store.Save(relPath, payload); err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	resultURL := fmt.Sprintf("/api/v1/reports/download?token=%s", token)
	if err := s.repo.MarkFinished(ctx, job.ID, resultURL, s.clock()); err != nil {
		return fmt.Errorf("mark report finished: %w", err)
	}

	s.logger.Info("report job finished", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return nil
}

// ResolveDownload validates the token and opens the stored CSV.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return &ReportDownload{File: file, Filename: filepath.Base(relPath), ExpiresAt: expiresAt}, nil
}

func (s *ReportService) failJob(ctx context.Context, id string, cause error) {
	if err := s.repo.MarkFailed(ctx, id, cause.Error(), s.clock()); err != nil {
		s.logger.Warn("failed to mark report failed", zap.String("job_id", id), zap.Error(err))
	}
}

func (s *ReportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ReportTypeStudentRoster:
		return s.rosterDataset(ctx, job.Params)
	case models.ReportTypeScholarshipStatus:
		return s.scholarshipDataset(ctx, job.Params)
	default:
		return export.Dataset{}, fmt.Errorf("unsupported report type %q", job.Type)
	}
}

func (s *ReportService) rosterDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("list students: %w", err)
	}

	calendar, err := s.configs.Calendar(ctx)
	if err != nil {
		calendar = academic.DefaultCalendarConfig()
	}
	now := s.clock()

	headers := []string{"Roll Number", "Name", "Branch", "Admission", "Entry Year", "Study Year", "Semester", "Qualifying Exam"}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		rn, err := academic.ParseRollNumber(student.RollNumber)
		if err != nil {
			continue
		}
		if params.Branch != "" && rn.Branch != params.Branch {
			continue
		}
		position := academic.ResolvePosition(rn, calendar, now)
		rows = append(rows, map[string]string{
			"Roll Number":     rn.Raw,
			"Name":            student.FullName,
			"Branch":          rn.Branch,
			"Admission":       string(rn.Admission),
			"Entry Year":      strconv.Itoa(rn.EntryYear),
			"Study Year":      position.StudyYearLabel,
			"Semester":        position.SemesterLabel,
			"Qualifying Exam": student.QualifyingExam,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ReportService) scholarshipDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("list students: %w", err)
	}

	govt, self, err := s.ledger.SanctionAmountsByStudent(ctx, params.AcademicYear)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("sum ledger: %w", err)
	}

	policy, err := s.configs.FeePolicy(ctx)
	if err != nil {
		policy = academic.DefaultFeePolicy()
	}

	headers := []string{"Roll Number", "Name", "Branch", "Category", "Total Fee", "Govt Paid", "Student Paid", "Pending", "Status"}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		rn, err := academic.ParseRollNumber(student.RollNumber)
		if err != nil {
			continue
		}
		if params.Branch != "" && rn.Branch != params.Branch {
			continue
		}
		summary := academic.ComputeFeeSummary(rn.Branch, policy,
			[]int64{govt[student.ID]}, []int64{self[student.ID]})
		rows = append(rows, map[string]string{
			"Roll Number":  rn.Raw,
			"Name":         student.FullName,
			"Branch":       rn.Branch,
			"Category":     string(summary.Category),
			"Total Fee":    strconv.FormatInt(summary.TotalFee, 10),
			"Govt Paid":    strconv.FormatInt(summary.GovtPaid, 10),
			"Student Paid": strconv.FormatInt(summary.StudentPaid, 10),
			"Pending":      strconv.FormatInt(summary.PendingFee, 10),
			"Status":       string(summary.Status),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func branchKnown(branch string) (string, bool) {
	for _, name := range academic.Branches() {
		if name == branch {
			return name, true
		}
	}
	return "", false
}
