package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when an answer cannot be produced for any general reason
	ErrGenerationFailed = errors.New("failed to generate answer")

	// ErrEmptyQuestion is returned when the question text is blank
	ErrEmptyQuestion = errors.New("question text is empty")
)
