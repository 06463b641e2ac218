package dto

import (
	"time"

	"github.com/noah-isme/college-portal-api/internal/models"
)

// CreateStudentRequest registers a student on the rolls. Branch and
// admission type are not accepted; they come out of the roll number.
type CreateStudentRequest struct {
	RollNumber     string     `json:"roll_number" validate:"required"`
	FullName       string     `json:"full_name" validate:"required"`
	FatherName     string     `json:"father_name"`
	Gender         string     `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Email          string     `json:"email" validate:"omitempty,email"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	QualifyingExam string     `json:"qualifying_exam"`
}

// UpdateStudentRequest edits contact and biographical fields. The roll
// number is immutable after creation.
type UpdateStudentRequest struct {
	FullName       *string    `json:"full_name,omitempty"`
	FatherName     *string    `json:"father_name,omitempty"`
	Gender         *string    `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string    `json:"phone,omitempty"`
	Address        *string    `json:"address,omitempty"`
	QualifyingExam *string    `json:"qualifying_exam,omitempty"`
}

// StudentResponse is a stored student plus the facts derived from the roll
// number at read time.
type StudentResponse struct {
	models.Student
	Branch        string `json:"branch,omitempty"`
	AdmissionType string `json:"admission_type,omitempty"`
	EntryYear     int    `json:"entry_year,omitempty"`
}

// StudentListResponse pages through the rolls.
type StudentListResponse struct {
	Students   []StudentResponse `json:"students"`
	Pagination models.Pagination `json:"pagination"`
}
