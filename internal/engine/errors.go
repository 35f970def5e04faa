package engine

import "errors"

var (
	// ErrValidation indicates a validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the target annotation could not be located.
	ErrNotFound = errors.New("annotation not found")

	// ErrAmbiguous indicates the target annotation's text occurs more than
	// once and no occurrence was chosen.
	ErrAmbiguous = errors.New("annotation is ambiguous")

	// ErrOrphanRefused indicates a replacement that would orphan its
	// annotation was not allowed to proceed.
	ErrOrphanRefused = errors.New("replacement would orphan annotation")
)
