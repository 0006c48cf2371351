package service

import (
	"errors"
	"fmt"

	"fittrack-api/internal/domain"
)

// UploadErrorKind classifies why an upload was rejected. Every validation
// kind is raised before any byte reaches storage, so a rejected upload has
// zero side effects.
type UploadErrorKind string

const (
	ErrKindMissingFile           UploadErrorKind = "MISSING_FILE"
	ErrKindUnknownEntityType     UploadErrorKind = "UNKNOWN_ENTITY_TYPE"
	ErrKindUnrecognizedSignature UploadErrorKind = "UNRECOGNIZED_SIGNATURE"
	ErrKindSignatureMismatch     UploadErrorKind = "SIGNATURE_MISMATCH"
	ErrKindFileTooLarge          UploadErrorKind = "FILE_TOO_LARGE"
	ErrKindPerTypeCountExceeded  UploadErrorKind = "PER_TYPE_COUNT_EXCEEDED"
	ErrKindUserQuotaExceeded     UploadErrorKind = "USER_QUOTA_EXCEEDED"
	ErrKindParentNotFound        UploadErrorKind = "PARENT_NOT_FOUND"
	ErrKindStorageWriteFailed    UploadErrorKind = "STORAGE_WRITE_FAILED"
)

// UploadError is a typed rejection of an upload request. Category is set
// only for PER_TYPE_COUNT_EXCEEDED.
type UploadError struct {
	Kind     UploadErrorKind
	Category domain.MediaCategory
	Message  string
	cause    error
}

func (e *UploadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.cause
}

func newUploadError(kind UploadErrorKind, message string) *UploadError {
	return &UploadError{Kind: kind, Message: message}
}

func wrapUploadError(kind UploadErrorKind, message string, cause error) *UploadError {
	return &UploadError{Kind: kind, Message: message, cause: cause}
}

// AsUploadError extracts an UploadError from an error chain.
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
