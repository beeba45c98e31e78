package models

import "time"

// CourseModule is a faculty-owned unit of LMS content for a subject.
type CourseModule struct {
	ID          string    `db:"id" json:"id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	FacultyID   string    `db:"faculty_id" json:"faculty_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Published   bool      `db:"published" json:"published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Lesson is one assignment or reading inside a module.
type Lesson struct {
	ID             string     `db:"id" json:"id"`
	ModuleID       string     `db:"module_id" json:"module_id"`
	Title          string     `db:"title" json:"title"`
	Content        *string    `db:"content" json:"content,omitempty"`
	AttachmentPath *string    `db:"attachment_path" json:"attachment_path,omitempty"`
	DueDate        *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// SubmissionStatus tracks the lifecycle of a student submission.
type SubmissionStatus string

const (
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionLate        SubmissionStatus = "late"
	SubmissionResubmitted SubmissionStatus = "resubmitted"
	SubmissionGraded      SubmissionStatus = "graded"
)

// ClassifySubmission decides the status written on a (re)submission.
// An overdue submission is always tagged late, overriding resubmission.
func ClassifySubmission(now time.Time, dueDate *time.Time, hadPrior bool) SubmissionStatus {
	if dueDate != nil && now.After(*dueDate) {
		return SubmissionLate
	}
	if hadPrior {
		return SubmissionResubmitted
	}
	return SubmissionSubmitted
}

// Submission is a student's answer to a lesson, keyed by (lesson_id, student_id).
type Submission struct {
	ID             string           `db:"id" json:"id"`
	LessonID       string           `db:"lesson_id" json:"lesson_id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	SubmissionText *string          `db:"submission_text" json:"submission_text,omitempty"`
	AttachmentPath *string          `db:"attachment_path" json:"attachment_path,omitempty"`
	Status         SubmissionStatus `db:"status" json:"status"`
	Score          *float64         `db:"score" json:"score,omitempty"`
	Feedback       *string          `db:"feedback" json:"feedback,omitempty"`
	GradedBy       *string          `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt       *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
	SubmittedAt    time.Time        `db:"submitted_at" json:"submitted_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// SubmissionDetail joins lesson and student context for grading views.
type SubmissionDetail struct {
	Submission
	LessonTitle string `db:"lesson_title" json:"lesson_title"`
	StudentName string `db:"student_name" json:"student_name"`
}

// SubmissionFilter captures list filtering criteria.
type SubmissionFilter struct {
	LessonID  string
	StudentID string
	Status    SubmissionStatus
	Page      int
	PageSize  int
}
