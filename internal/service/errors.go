package service

import "errors"

// Common service errors, mapped to HTTP statuses by the handlers.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrAttachmentLink covers any attachment that could not be bound to its
	// parent: missing, already linked, wrong kind, or owned by someone else.
	ErrAttachmentLink = errors.New("attachment link failed")
)
