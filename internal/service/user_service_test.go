package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type clerkRepoStub struct {
	users    map[string]*models.User
	revoked  []string
	auditLog []*models.AuditLog
}

func newClerkRepoStub() *clerkRepoStub {
	return &clerkRepoStub{users: map[string]*models.User{}}
}

func (s *clerkRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, user := range s.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (s *clerkRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *clerkRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *clerkRepoStub) Create(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *clerkRepoStub) Update(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *clerkRepoStub) Delete(ctx context.Context, id string) error {
	if user, ok := s.users[id]; ok {
		user.Active = false
	}
	return nil
}

func (s *clerkRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

func (s *clerkRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.auditLog = append(s.auditLog, log)
	return nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestCreateClerk(t *testing.T) {
	repo := newClerkRepoStub()
	svc := NewUserService(repo, nil, nil)

	clerk, err := svc.CreateClerk(context.Background(), dto.CreateClerkRequest{
		Email:    "clerk@svcet.edu",
		FullName: "Records Clerk",
		Password: "initial-pass",
	}, adminClaims())
	require.NoError(t, err)

	assert.Equal(t, models.RoleClerk, clerk.Role)
	assert.True(t, clerk.Active)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(clerk.PasswordHash), []byte("initial-pass")))

	require.Len(t, repo.auditLog, 1)
	assert.Equal(t, models.AuditActionClerkCreate, repo.auditLog[0].Action)
}

func TestCreateClerkDuplicateEmail(t *testing.T) {
	repo := newClerkRepoStub()
	repo.users["clerk-1"] = &models.User{ID: "clerk-1", Email: "clerk@svcet.edu", Role: models.RoleClerk}
	svc := NewUserService(repo, nil, nil)

	_, err := svc.CreateClerk(context.Background(), dto.CreateClerkRequest{
		Email:    "clerk@svcet.edu",
		FullName: "Another Clerk",
		Password: "initial-pass",
	}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateClerkPasswordRevokesSessions(t *testing.T) {
	repo := newClerkRepoStub()
	repo.users["clerk-1"] = &models.User{ID: "clerk-1", Email: "clerk@svcet.edu", Role: models.RoleClerk, Active: true}
	svc := NewUserService(repo, nil, nil)

	password := "rotated-pass"
	updated, err := svc.UpdateClerk(context.Background(), "clerk-1", dto.UpdateClerkRequest{Password: &password}, adminClaims())
	require.NoError(t, err)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
	assert.Contains(t, repo.revoked, "clerk-1")
}

func TestDeleteClerkSoftDeletes(t *testing.T) {
	repo := newClerkRepoStub()
	repo.users["clerk-1"] = &models.User{ID: "clerk-1", Email: "clerk@svcet.edu", Role: models.RoleClerk, Active: true}
	svc := NewUserService(repo, nil, nil)

	require.NoError(t, svc.DeleteClerk(context.Background(), "clerk-1", adminClaims()))
	assert.False(t, repo.users["clerk-1"].Active)
	assert.Contains(t, repo.revoked, "clerk-1")
}

func TestClerkOperationsIgnoreAdminAccounts(t *testing.T) {
	repo := newClerkRepoStub()
	repo.users["admin-1"] = &models.User{ID: "admin-1", Email: "admin@svcet.edu", Role: models.RoleAdmin, Active: true}
	svc := NewUserService(repo, nil, nil)

	// an admin ID is invisible through the clerk API
	_, err := svc.GetClerk(context.Background(), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	list, err := svc.ListClerks(context.Background(), models.UserFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Zero(t, list.Pagination.TotalCount)
}
