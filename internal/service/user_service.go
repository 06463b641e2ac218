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
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type clerkRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService manages clerk accounts. Only administrators reach these
// operations; the route layer enforces that.
type UserService struct {
	repo      clerkRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo clerkRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// CreateClerk provisions a clerk account with an initial password.
func (s *UserService) CreateClerk(ctx context.Context, req dto.CreateClerkRequest, actor *models.JWTClaims) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clerk payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleClerk,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create clerk")
	}

	s.recordAudit(ctx, actor, models.AuditActionClerkCreate, user.ID, map[string]string{"email": req.Email})

	return user, nil
}

// UpdateClerk edits a clerk account. A password change revokes any open
// sessions.
func (s *UserService) UpdateClerk(ctx context.Context, id string, req dto.UpdateClerkRequest, actor *models.JWTClaims) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clerk payload")
	}

	user, err := s.findClerk(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	passwordChanged := false
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
		passwordChanged = true
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update clerk")
	}

	if passwordChanged || (req.Active != nil && !*req.Active) {
		if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke clerk sessions", zap.Error(err))
		}
	}

	s.recordAudit(ctx, actor, models.AuditActionClerkUpdate, user.ID, req)

	return user, nil
}

// DeleteClerk soft-deletes a clerk account and revokes its sessions.
func (s *UserService) DeleteClerk(ctx context.Context, id string, actor *models.JWTClaims) error {
	user, err := s.findClerk(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete clerk")
	}

	if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke clerk sessions", zap.Error(err))
	}

	s.recordAudit(ctx, actor, models.AuditActionClerkDelete, user.ID, nil)

	return nil
}

// GetClerk returns one clerk account.
func (s *UserService) GetClerk(ctx context.Context, id string) (*models.User, error) {
	return s.findClerk(ctx, id)
}

// ListClerks pages through clerk accounts.
func (s *UserService) ListClerks(ctx context.Context, filter models.UserFilter) (*dto.ClerkListResponse, error) {
	clerk := models.RoleClerk
	filter.Role = &clerk

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clerks")
	}

	return &dto.ClerkListResponse{
		Clerks: users,
		Pagination: models.Pagination{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalCount: total,
		},
	}, nil
}

func (s *UserService) findClerk(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clerk not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clerk")
	}
	if user.Role != models.RoleClerk {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "clerk not found")
	}
	return user, nil
}

func (s *UserService) recordAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, payload interface{}) {
	var userID *string
	if actor != nil {
		userID = &actor.UserID
	}
	var values []byte
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			values = data
		}
	}
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "clerk",
		ResourceID: &resourceID,
		NewValues:  values,
	}); err != nil {
		s.logger.Warn("failed to record clerk audit log", zap.Error(err))
	}
}
