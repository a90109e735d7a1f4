package model

import "errors"

var (
	// Content repository errors
	ErrNodeNotFound   = errors.New("content node not found")
	ErrParentNotFound = errors.New("parent container not found")
	ErrNodeExists     = errors.New("node id already exists in container")
	ErrRootImmutable  = errors.New("root node cannot be moved or deleted")

	// Deletion log errors
	ErrPendingEntryNotFound = errors.New("no pending deletion log entry")
	ErrInvalidLogEntry      = errors.New("invalid deletion log entry")
	ErrInvalidOriginalPath  = errors.New("invalid original path")

	// Quarantine errors
	ErrQuarantineMissing = errors.New("quarantine container not found")

	// Settings errors
	ErrPendingDeletionsExist = errors.New("pending deletions exist")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
