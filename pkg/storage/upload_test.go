package storage

import (
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateUploadAcceptsDocumentTypes(t *testing.T) {
	for _, name := range []string{"form.pdf", "scan.JPG", "photo.jpeg", "id.png", "req.doc", "req.docx"} {
		require.NoError(t, ValidateUpload(header(name, 1024), UploadKindDocument, 10<<20), name)
	}
}

func TestValidateUploadRejectsBadExtension(t *testing.T) {
	err := ValidateUpload(header("malware.exe", 1024), UploadKindDocument, 10<<20)
	require.Error(t, err)
	var badExt *ErrBadExtension
	require.True(t, errors.As(err, &badExt))
	assert.Equal(t, ".exe", badExt.Ext)
}

func TestValidateUploadZipOnlyForAttachments(t *testing.T) {
	require.Error(t, ValidateUpload(header("archive.zip", 1024), UploadKindDocument, 10<<20))
	require.NoError(t, ValidateUpload(header("archive.zip", 1024), UploadKindAttachment, 10<<20))
}

func TestValidateUploadEnforcesSizeCap(t *testing.T) {
	err := ValidateUpload(header("big.pdf", (10<<20)+1), UploadKindDocument, 10<<20)
	require.Error(t, err)
	var tooLarge *ErrFileTooLarge
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(10<<20), tooLarge.Max)
}

func TestUploadFilenameKeepsExtensionAndAvoidsCollisions(t *testing.T) {
	first := UploadFilename("Report Card.PDF")
	second := UploadFilename("Report Card.PDF")
	assert.True(t, strings.HasSuffix(first, ".pdf"), first)
	assert.NotEqual(t, first, second)
}
