package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/mgcampos/campus-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryExistsForTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND school_year = $2 AND semester = $3")).
		WithArgs("stu-1", "2026-2027", "1st").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForTerm(context.Background(), "stu-1", "2026-2027", "1st")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments")).
		WithArgs("stu-2", "2026-2027", "1st").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsForTerm(context.Background(), "stu-2", "2026-2027", "1st")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateFansOutNotifications(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	enrollment := &models.Enrollment{
		StudentID:  "stu-1",
		ProgramID:  "prog-1",
		SectionID:  "sec-1",
		SchoolYear: "2026-2027",
		Semester:   "1st",
	}
	notifications := []models.Notification{
		{UserID: "admin-1", Title: "New enrollment", Message: "pending review", Type: models.NotificationTypeEnrollment},
		{UserID: "admin-2", Title: "New enrollment", Message: "pending review", Type: models.NotificationTypeEnrollment},
	}
	require.NoError(t, repo.Create(context.Background(), enrollment, notifications))
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateMapsUniqueViolationToDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "enrollments_student_term_key"})
	mock.ExpectRollback()

	enrollment := &models.Enrollment{
		StudentID:  "stu-1",
		ProgramID:  "prog-1",
		SectionID:  "sec-1",
		SchoolYear: "2026-2027",
		Semester:   "1st",
	}
	err := repo.Create(context.Background(), enrollment, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDecideCommitsStatusAndNotification(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	remarks := "complete requirements"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments")).
		WithArgs("enr-1", models.EnrollmentStatusApproved, &remarks, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	notif := &models.Notification{UserID: "stu-1", Title: "Enrollment approved", Message: "approved", Type: models.NotificationTypeEnrollment}
	err := repo.Decide(context.Background(), "enr-1", models.EnrollmentStatusApproved, &remarks, "admin-1", notif)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDecideRollsBackWhenNotificationFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	notif := &models.Notification{UserID: "stu-1", Title: "Enrollment rejected", Message: "rejected", Type: models.NotificationTypeEnrollment}
	err := repo.Decide(context.Background(), "enr-1", models.EnrollmentStatusRejected, nil, "admin-1", notif)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "program_id", "section_id", "school_year", "semester",
		"status", "remarks", "reviewed_by", "reviewed_at", "created_at", "updated_at",
		"student_name", "student_email",
	}).AddRow("enr-1", "stu-1", "prog-1", "sec-1", "2026-2027", "1st",
		models.EnrollmentStatusPending, nil, nil, nil, time.Now(), time.Now(),
		"Maria Santos", "maria@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.student_id")).
		WithArgs("enr-1").
		WillReturnRows(rows)

	detail, err := repo.FindDetailByID(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Equal(t, "enr-1", detail.ID)
	require.Equal(t, "Maria Santos", detail.StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}
