package models

// Permission keys granted per role. Stored in the role_permissions table and
// cached in the session for its lifetime.
const (
	PermManageUsers       = "manage_users"
	PermApproveEnrollment = "approve_enrollment"
	PermVerifyDocuments   = "verify_documents"
	PermEncodeGrades      = "encode_grades"
	PermRecordAttendance  = "record_attendance"
	PermManageLMS         = "manage_lms"
	PermGradeSubmissions  = "grade_submissions"
	PermViewAuditLog      = "view_audit_log"
	PermExportReports     = "export_reports"
)

// RolePermission maps a role to a single permission key.
type RolePermission struct {
	ID            string   `db:"id" json:"id"`
	Role          UserRole `db:"role" json:"role"`
	PermissionKey string   `db:"permission_key" json:"permission_key"`
}

// PermissionSet provides O(1) membership checks over granted keys.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from a slice of keys.
func NewPermissionSet(keys []string) PermissionSet {
	set := make(PermissionSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Has reports whether the key is granted.
func (s PermissionSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the granted keys in unspecified order.
func (s PermissionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
