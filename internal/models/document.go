package models

import "time"

// DocumentStatus is the verification state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Document is a student-uploaded credential awaiting registrar review.
type Document struct {
	ID          string         `db:"id" json:"id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	DocType     string         `db:"doc_type" json:"doc_type"`
	DisplayName string         `db:"display_name" json:"display_name"`
	FilePath    string         `db:"file_path" json:"file_path"`
	Status      DocumentStatus `db:"status" json:"status"`
	Remarks     *string        `db:"remarks" json:"remarks,omitempty"`
	VerifiedBy  *string        `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt  *time.Time     `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentFilter captures list filtering criteria.
type DocumentFilter struct {
	StudentID string
	Status    DocumentStatus
	DocType   string
	Page      int
	PageSize  int
}

// ParseVerifyAction maps raw input onto the document review enum.
func ParseVerifyAction(raw string) (DecisionAction, bool) {
	switch raw {
	case "verify":
		return ActionApprove, true
	case "reject":
		return ActionReject, true
	default:
		return "", false
	}
}
