package models

import "time"

// EnrollmentStatus is the enrollment review state.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusApproved EnrollmentStatus = "approved"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

// Terminal reports whether the status accepts no further transition.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusApproved || s == EnrollmentStatusRejected
}

// Enrollment represents a student's application for a term.
// One student may hold at most one enrollment per (school_year, semester).
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	ProgramID  string           `db:"program_id" json:"program_id"`
	SectionID  string           `db:"section_id" json:"section_id"`
	SchoolYear string           `db:"school_year" json:"school_year"`
	Semester   string           `db:"semester" json:"semester"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	Remarks    *string          `db:"remarks" json:"remarks,omitempty"`
	ReviewedBy *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail joins the owning student for list and review views.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}

// EnrollmentFilter captures list filtering criteria.
type EnrollmentFilter struct {
	StudentID  string
	SchoolYear string
	Semester   string
	Status     EnrollmentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// DecisionAction is the reviewed command applied to a pending record.
type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)

// ParseDecisionAction maps raw input onto the action enum. The boolean is
// false for any unknown action string.
func ParseDecisionAction(raw string) (DecisionAction, bool) {
	switch DecisionAction(raw) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	default:
		return "", false
	}
}
