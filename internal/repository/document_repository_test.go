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

func TestDocumentRepositoryCreateDefaultsPendingStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	document := &models.Document{
		StudentID:   "stu-1",
		DocType:     "form137",
		DisplayName: "Form 137",
		FilePath:    "documents/stu-1/form137.pdf",
	}
	require.NoError(t, repo.Create(context.Background(), document))
	require.NotEmpty(t, document.ID)
	require.Equal(t, models.DocumentStatusPending, document.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryVerifyCommitsStatusAndNotification(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	remarks := "legible and complete"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
		WithArgs("doc-1", models.DocumentStatusVerified, &remarks, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	notif := &models.Notification{UserID: "stu-1", Title: "Document verified", Message: "verified", Type: models.NotificationTypeDocument}
	err := repo.Verify(context.Background(), "doc-1", models.DocumentStatusVerified, &remarks, "admin-1", notif)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryVerifyRollsBackWhenNotificationFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	notif := &models.Notification{UserID: "stu-1", Title: "Document rejected", Message: "rejected", Type: models.NotificationTypeDocument}
	err := repo.Verify(context.Background(), "doc-1", models.DocumentStatusRejected, nil, "admin-1", notif)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "doc_type", "display_name", "file_path", "status",
		"remarks", "verified_by", "verified_at", "created_at", "updated_at",
	}).AddRow("doc-1", "stu-1", "form137", "Form 137", "documents/stu-1/form137.pdf",
		models.DocumentStatusPending, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, doc_type")).
		WithArgs("doc-1").
		WillReturnRows(rows)

	document, err := repo.FindByID(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, "doc-1", document.ID)
	require.Equal(t, models.DocumentStatusPending, document.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
