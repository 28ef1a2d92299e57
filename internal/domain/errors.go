package domain

import "errors"

var (
	// ErrPaperNotFound is returned when no stored paper matches the requested ID.
	ErrPaperNotFound = errors.New("question paper not found")
	// ErrEmptySource indicates the submitted page markup was blank.
	ErrEmptySource = errors.New("empty review page")
)
