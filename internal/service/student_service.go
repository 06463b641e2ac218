package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByRollNumber(ctx context.Context, roll string) (*models.Student, error)
	ExistsByRollNumber(ctx context.Context, roll string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

type studentAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// StudentService manages the student rolls. The roll number is the identity
// anchor: it is parsed on every write so malformed identifiers never reach
// storage, and parsed again on reads to derive branch and admission facts.
type StudentService struct {
	repo      studentRepository
	audit     studentAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, audit studentAuditLogger, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Create registers a student. The qualifying exam defaults from the parsed
// roll number when the clerk leaves it blank.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest, actor *models.JWTClaims) (*dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	rn, err := academic.ParseRollNumber(req.RollNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnparseableRoll.Code, appErrors.ErrUnparseableRoll.Status, "roll number format not recognized")
	}

	exists, err := s.repo.ExistsByRollNumber(ctx, rn.Raw, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll number already registered")
	}

	exam := req.QualifyingExam
	if exam == "" {
		exam = academic.InferQualifyingExam(rn)
	}

	now := time.Now().UTC()
	student := &models.Student{
		ID:             uuid.NewString(),
		RollNumber:     rn.Raw,
		FullName:       req.FullName,
		FatherName:     req.FatherName,
		Gender:         req.Gender,
		DateOfBirth:    req.DateOfBirth,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		QualifyingExam: exam,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.recordAudit(ctx, actor, models.AuditActionStudentCreate, student.ID, req)

	return s.toResponse(student), nil
}

// Update edits biographical fields. Roll numbers are immutable; re-admission
// under a new roll is a new record.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest, actor *models.JWTClaims) (*dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.FatherName != nil {
		student.FatherName = *req.FatherName
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Address != nil {
		student.Address = *req.Address
	}
	if req.QualifyingExam != nil {
		student.QualifyingExam = *req.QualifyingExam
	}
	student.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.recordAudit(ctx, actor, models.AuditActionStudentUpdate, student.ID, req)

	return s.toResponse(student), nil
}

// GetByRoll looks a student up by roll number.
func (s *StudentService) GetByRoll(ctx context.Context, roll string) (*dto.StudentResponse, error) {
	rn, err := academic.ParseRollNumber(roll)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnparseableRoll.Code, appErrors.ErrUnparseableRoll.Status, "roll number format not recognized")
	}

	student, err := s.repo.FindByRollNumber(ctx, rn.Raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	return s.toResponse(student), nil
}

// List pages through the rolls with optional search and active filters.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) (*dto.StudentListResponse, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, *s.toResponse(&students[i]))
	}

	return &dto.StudentListResponse{
		Students: items,
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalCount: total,
		},
	}, nil
}

// Deactivate soft-removes a student from the active rolls.
func (s *StudentService) Deactivate(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}

	s.recordAudit(ctx, actor, models.AuditActionStudentUpdate, id, map[string]bool{"active": false})

	return nil
}

// toResponse attaches the roll-derived facts. Stored rows predating a format
// change may no longer parse; those surface without derived fields rather
// than failing the read.
func (s *StudentService) toResponse(student *models.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{Student: *student}
	if rn, err := academic.ParseRollNumber(student.RollNumber); err == nil {
		resp.Branch = rn.Branch
		resp.AdmissionType = string(rn.Admission)
		resp.EntryYear = rn.EntryYear
	}
	return resp
}

func (s *StudentService) recordAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, payload interface{}) {
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
		Action:     action,
		Resource:   "student",
		ResourceID: &resourceID,
		NewValues:  values,
	}); err != nil {
		s.logger.Warn("failed to record student audit log", zap.Error(err))
	}
}
