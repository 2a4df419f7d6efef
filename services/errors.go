package services

import "errors"

var (
	// ErrDocumentNotFound is returned when a sign request references an
	// unknown document id (client/server desync).
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAlreadySigned is returned when a signature already exists for the
	// (document, user) pair. Signing is at-most-once; a duplicate is
	// rejected, never overwritten.
	ErrAlreadySigned = errors.New("document already signed")
)
