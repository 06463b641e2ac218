package dto

import "github.com/noah-isme/college-portal-api/internal/models"

// CreateClerkRequest provisions a clerk account.
type CreateClerkRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateClerkRequest edits a clerk account. Nil fields are left untouched.
type UpdateClerkRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// ClerkListResponse pages through clerk accounts.
type ClerkListResponse struct {
	Clerks     []models.User     `json:"clerks"`
	Pagination models.Pagination `json:"pagination"`
}
