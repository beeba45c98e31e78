package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

func TestGradeRepositoryUpsertCommitsGradeAndNotification(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	grade := &models.Grade{
		StudentID:  "stu-1",
		SubjectID:  "subj-1",
		FacultyID:  "fac-1",
		SectionID:  "sec-1",
		SchoolYear: "2026-2027",
		Semester:   "1st",
	}
	grade.Recalculate()
	notif := &models.Notification{UserID: "stu-1", Title: "Grade posted", Message: "updated", Type: models.NotificationTypeGrade}
	require.NoError(t, repo.Upsert(context.Background(), grade, notif))
	require.NotEmpty(t, grade.ID)
	require.False(t, grade.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertRollsBackWhenNotificationFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	grade := &models.Grade{StudentID: "stu-1", SubjectID: "subj-1", FacultyID: "fac-1", SchoolYear: "2026-2027", Semester: "1st"}
	notif := &models.Notification{UserID: "stu-1", Title: "Grade posted", Message: "updated", Type: models.NotificationTypeGrade}
	require.Error(t, repo.Upsert(context.Background(), grade, notif))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	final := 88.5
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "subject_id", "faculty_id", "section_id", "school_year", "semester",
		"prelim", "midterm", "finals", "final_grade", "remarks", "created_at", "updated_at",
	}).AddRow("grade-1", "stu-1", "subj-1", "fac-1", "sec-1", "2026-2027", "1st",
		85.0, 90.0, 90.5, final, models.RemarksPassed, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, subject_id")).
		WithArgs("stu-1", "1st").
		WillReturnRows(rows)

	grades, err := repo.List(context.Background(), models.GradeFilter{StudentID: "stu-1", Semester: "1st"})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.Equal(t, models.RemarksPassed, grades[0].Remarks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryReportCardRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	final := 91.0
	rows := sqlmock.NewRows([]string{
		"subject_code", "subject_name", "prelim", "midterm", "finals", "final_grade", "remarks",
	}).AddRow("MATH101", "College Algebra", 90.0, 91.0, 92.0, final, models.RemarksPassed)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sub.code AS subject_code")).
		WithArgs("stu-1", "2026-2027", "1st").
		WillReturnRows(rows)

	report, err := repo.ReportCardRows(context.Background(), "stu-1", "2026-2027", "1st")
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.Equal(t, "MATH101", report[0].SubjectCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
