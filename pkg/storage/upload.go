package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// UploadKind selects the extension whitelist applied to an upload.
type UploadKind string

const (
	// UploadKindDocument covers registrar document uploads.
	UploadKindDocument UploadKind = "document"
	// UploadKindAttachment covers LMS attachments and additionally allows zip.
	UploadKindAttachment UploadKind = "attachment"
)

var documentExts = map[string]struct{}{
	".pdf": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".doc": {}, ".docx": {},
}

// ErrFileTooLarge is reported when the upload exceeds the configured cap.
type ErrFileTooLarge struct{ Max int64 }

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file exceeds maximum size of %d bytes", e.Max)
}

// ErrBadExtension is reported for a disallowed file extension.
type ErrBadExtension struct{ Ext string }

func (e *ErrBadExtension) Error() string {
	return fmt.Sprintf("file extension %q not allowed", e.Ext)
}

// ValidateUpload checks size and extension for the given kind.
func ValidateUpload(fh *multipart.FileHeader, kind UploadKind, maxSize int64) error {
	if maxSize > 0 && fh.Size > maxSize {
		return &ErrFileTooLarge{Max: maxSize}
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := documentExts[ext]; ok {
		return nil
	}
	if kind == UploadKindAttachment && ext == ".zip" {
		return nil
	}
	return &ErrBadExtension{Ext: ext}
}

// UploadFilename builds a collision-resistant stored name from the current
// timestamp and a random suffix, preserving the original extension.
func UploadFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	}
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), hex.EncodeToString(buf), ext)
}

// SaveUpload validates, names, and persists a multipart upload under the
// given subdirectory, returning the path relative to the storage root.
func SaveUpload(ls *LocalStorage, fh *multipart.FileHeader, kind UploadKind, subdir string, maxSize int64) (string, error) {
	if err := ValidateUpload(fh, kind, maxSize); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close() //nolint:errcheck

	rel := path.Join(subdir, UploadFilename(fh.Filename))
	if _, err := ls.SaveStream(rel, src); err != nil {
		return "", err
	}
	return rel, nil
}
