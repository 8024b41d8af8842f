package apperr

import "errors"

var (
	// ErrNoDocument means an update cycle had no source text to work with.
	// It is not a failure: cycles end silently on it.
	ErrNoDocument = errors.New("no document")

	ErrNotFound = errors.New("not found")
	ErrRead     = errors.New("document read failed")
	ErrParse    = errors.New("parse failed")
	ErrExport   = errors.New("export failed")
)
