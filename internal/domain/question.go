package domain

import (
	"strings"
	"time"
)

// QuestionStatus represents the processing state of a question.
type QuestionStatus string

// Possible question status values.
//
// There is no failed state: a question whose answer generation failed stays
// pending and is indistinguishable from one that is still being processed.
const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusAnswered QuestionStatus = "answered"
)

// Question is a user-submitted query tied to one Document, with an evolving
// status and an eventual answer.
type Question struct {
	ID         int64          `json:"id"`
	DocumentID int64          `json:"document_id"`
	Text       string         `json:"question"`
	Answer     *string        `json:"answer"`
	Status     QuestionStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewQuestion creates a pending, unanswered question for the given document.
// The ID is assigned by the record store on insert.
func NewQuestion(documentID int64, text string) (*Question, error) {
	now := time.Now().UTC()
	q := &Question{
		DocumentID: documentID,
		Text:       text,
		Status:     QuestionStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks the question's invariants.
func (q *Question) Validate() error {
	if q.DocumentID <= 0 {
		return NewValidationError("document_id", "must be a positive integer", ErrInvalidID)
	}

	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("question", "cannot be empty", ErrEmptyContent)
	}

	if !q.Status.IsValid() {
		return NewValidationError("status", "is not a known status", ErrInvalidQuestionStatus)
	}

	// An answered question always carries its answer.
	if q.Status == QuestionStatusAnswered && q.Answer == nil {
		return NewValidationError("answer", "is required once answered", ErrValidation)
	}

	return nil
}

// MarkAnswered applies the terminal transition PENDING -> ANSWERED.
// Calling it on an already answered question overwrites the answer, which
// keeps repeated generator runs idempotent.
func (q *Question) MarkAnswered(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return NewValidationError("answer", "cannot be empty", ErrEmptyContent)
	}

	q.Answer = &answer
	q.Status = QuestionStatusAnswered
	q.UpdatedAt = time.Now().UTC()
	return nil
}

// HoldPending keeps a pending question pending with no answer, clearing any
// answer left on it. Answered is terminal: an answered question is never
// demoted. It reports whether q changed.
func (q *Question) HoldPending() bool {
	if q.Status != QuestionStatusPending || q.Answer == nil {
		return false
	}

	q.Answer = nil
	q.UpdatedAt = time.Now().UTC()
	return true
}

// IsAnswered reports whether the question reached its terminal state.
func (q *Question) IsAnswered() bool {
	return q.Status == QuestionStatusAnswered
}

// IsValid reports whether s is one of the known statuses.
func (s QuestionStatus) IsValid() bool {
	switch s {
	case QuestionStatusPending, QuestionStatusAnswered:
		return true
	default:
		return false
	}
}
