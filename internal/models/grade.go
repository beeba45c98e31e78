package models

import (
	"math"
	"time"
)

// GradeRemarks classifies a computed final grade.
type GradeRemarks string

const (
	RemarksPassed     GradeRemarks = "PASSED"
	RemarksFailed     GradeRemarks = "FAILED"
	RemarksIncomplete GradeRemarks = "INCOMPLETE"
)

// PassingGrade is the minimum final grade considered passing.
const PassingGrade = 75.0

// Grade holds the component scores for one student in one subject-term.
// Uniquely keyed by (student_id, subject_id, faculty_id, school_year, semester).
type Grade struct {
	ID         string       `db:"id" json:"id"`
	StudentID  string       `db:"student_id" json:"student_id"`
	SubjectID  string       `db:"subject_id" json:"subject_id"`
	FacultyID  string       `db:"faculty_id" json:"faculty_id"`
	SectionID  string       `db:"section_id" json:"section_id"`
	SchoolYear string       `db:"school_year" json:"school_year"`
	Semester   string       `db:"semester" json:"semester"`
	Prelim     *float64     `db:"prelim" json:"prelim,omitempty"`
	Midterm    *float64     `db:"midterm" json:"midterm,omitempty"`
	Finals     *float64     `db:"finals" json:"finals,omitempty"`
	FinalGrade *float64     `db:"final_grade" json:"final_grade,omitempty"`
	Remarks    GradeRemarks `db:"remarks" json:"remarks"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// ComputeFinal derives final_grade and remarks from the component scores:
// the mean of present components rounded to two decimals, INCOMPLETE when no
// component is recorded, PASSED at or above the passing threshold.
func ComputeFinal(prelim, midterm, finals *float64) (*float64, GradeRemarks) {
	var sum float64
	var n int
	for _, v := range []*float64{prelim, midterm, finals} {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil, RemarksIncomplete
	}
	final := math.Round(sum/float64(n)*100) / 100
	if final >= PassingGrade {
		return &final, RemarksPassed
	}
	return &final, RemarksFailed
}

// Recalculate refreshes the derived columns in place.
func (g *Grade) Recalculate() {
	g.FinalGrade, g.Remarks = ComputeFinal(g.Prelim, g.Midterm, g.Finals)
}

// GradeFilter captures list filtering criteria.
type GradeFilter struct {
	StudentID  string
	SubjectID  string
	FacultyID  string
	SectionID  string
	SchoolYear string
	Semester   string
}

// GradeReportRow is one subject line on a student report card.
type GradeReportRow struct {
	SubjectCode string       `db:"subject_code" json:"subject_code"`
	SubjectName string       `db:"subject_name" json:"subject_name"`
	Prelim      *float64     `db:"prelim" json:"prelim,omitempty"`
	Midterm     *float64     `db:"midterm" json:"midterm,omitempty"`
	Finals      *float64     `db:"finals" json:"finals,omitempty"`
	FinalGrade  *float64     `db:"final_grade" json:"final_grade,omitempty"`
	Remarks     GradeRemarks `db:"remarks" json:"remarks"`
}
