package models

import "time"

// AttendanceStatus marks a student's presence for one meeting.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is a known attendance mark.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// Attendance is a last-write-wins record keyed by
// (subject_id, section_id, student_id, attendance_date).
type Attendance struct {
	ID             string           `db:"id" json:"id"`
	SubjectID      string           `db:"subject_id" json:"subject_id"`
	SectionID      string           `db:"section_id" json:"section_id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	AttendanceDate time.Time        `db:"attendance_date" json:"attendance_date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Remarks        *string          `db:"remarks" json:"remarks,omitempty"`
	RecordedBy     string           `db:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter captures list filtering criteria.
type AttendanceFilter struct {
	SubjectID string
	SectionID string
	StudentID string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// AttendanceSheetRow is one student line on a section sheet export.
type AttendanceSheetRow struct {
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Remarks     *string          `db:"remarks" json:"remarks,omitempty"`
}
