package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrDocumentNotFound", err: ErrDocumentNotFound, expected: true},
		{name: "ErrQuestionNotFound", err: ErrQuestionNotFound, expected: true},
		{name: "ErrTaskNotFound", err: ErrTaskNotFound, expected: true},
		{
			name:     "wrapped ErrQuestionNotFound",
			err:      fmt.Errorf("failed to load question: %w", ErrQuestionNotFound),
			expected: true,
		},
		{
			name:     "doubly wrapped ErrDocumentNotFound",
			err:      fmt.Errorf("delete: %w", fmt.Errorf("%w: %w", ErrDeleteFailed, ErrDocumentNotFound)),
			expected: true,
		},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsNotFoundError(tc.err))
		})
	}
}

func TestEntityNotFoundErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrDocumentNotFound, ErrQuestionNotFound))
	assert.False(t, errors.Is(ErrQuestionNotFound, ErrDocumentNotFound))
	assert.False(t, IsNotFoundError(fmt.Errorf("insert: %w", ErrDuplicate)))
}
