package models

import "time"

// Student represents a learner on the college rolls. Branch, admission type
// and entry year are never stored; they are derived from the roll number by
// the academic package on demand.
type Student struct {
	ID             string     `db:"id" json:"id"`
	RollNumber     string     `db:"roll_number" json:"roll_number"`
	FullName       string     `db:"full_name" json:"full_name"`
	FatherName     string     `db:"father_name" json:"father_name"`
	Gender         string     `db:"gender" json:"gender"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Email          string     `db:"email" json:"email"`
	Phone          string     `db:"phone" json:"phone"`
	Address        string     `db:"address" json:"address"`
	QualifyingExam string     `db:"qualifying_exam" json:"qualifying_exam"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
