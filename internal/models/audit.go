package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin            = "LOGIN"
	AuditActionLogout           = "LOGOUT"
	AuditActionRegister         = "REGISTER"
	AuditActionVerifyOTP        = "VERIFY_OTP"
	AuditActionEnrollDecision   = "ENROLLMENT_DECISION"
	AuditActionDocumentDecision = "DOCUMENT_DECISION"
	AuditActionGradeEncode      = "GRADE_ENCODE"
	AuditActionAttendanceMark   = "ATTENDANCE_MARK"
	AuditActionSubmissionGrade  = "SUBMISSION_GRADE"
)

// AuditLog represents an append-only audit trail record. The application
// never mutates or deletes rows in this table.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	Module      string    `db:"module" json:"module"`
	Description string    `db:"description" json:"description"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter captures list filtering criteria for the admin audit view.
type AuditFilter struct {
	UserID   string
	Action   string
	Module   string
	Page     int
	PageSize int
}
