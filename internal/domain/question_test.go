package domain

import (
	"errors"
	"testing"
)

func TestNewQuestion(t *testing.T) {
	t.Parallel()

	q, err := NewQuestion(1, "Why?")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if q.Status != QuestionStatusPending {
		t.Errorf("Expected status %s, got %s", QuestionStatusPending, q.Status)
	}

	if q.Answer != nil {
		t.Errorf("Expected nil answer, got %q", *q.Answer)
	}

	if q.CreatedAt.IsZero() || q.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	_, err = NewQuestion(1, "")
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}

	_, err = NewQuestion(1, " \t\n")
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent for whitespace, got %v", err)
	}

	_, err = NewQuestion(0, "Why?")
	if !errors.Is(err, ErrInvalidID) {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}

	if !IsValidationError(err) {
		t.Error("Expected a ValidationError")
	}
}

func TestQuestionMarkAnswered(t *testing.T) {
	t.Parallel()

	q, err := NewQuestion(1, "Why?")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := q.MarkAnswered("Because."); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !q.IsAnswered() {
		t.Errorf("Expected status %s, got %s", QuestionStatusAnswered, q.Status)
	}

	if q.Answer == nil || *q.Answer != "Because." {
		t.Errorf("Expected answer to be set")
	}

	if err := q.Validate(); err != nil {
		t.Errorf("Expected answered question to be valid, got %v", err)
	}

	// Answering again overwrites
	if err := q.MarkAnswered("Because."); err != nil {
		t.Fatalf("Expected idempotent re-answer, got %v", err)
	}

	if *q.Answer != "Because." || !q.IsAnswered() {
		t.Error("Expected question to stay answered with the same answer")
	}

	if err := q.MarkAnswered(""); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
}

func TestQuestionHoldPending(t *testing.T) {
	t.Parallel()

	q, err := NewQuestion(1, "Why?")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if q.HoldPending() {
		t.Error("Expected no change for a pending question")
	}

	if err := q.MarkAnswered("Because."); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if q.HoldPending() {
		t.Error("Expected an answered question to be left alone")
	}

	if q.Status != QuestionStatusAnswered || q.Answer == nil || *q.Answer != "Because." {
		t.Errorf("Expected answered question to keep its answer, got %s", q.Status)
	}

	stray := "half written"
	p := &Question{DocumentID: 1, Text: "Why?", Status: QuestionStatusPending, Answer: &stray}
	if !p.HoldPending() {
		t.Error("Expected a stray answer on a pending question to be cleared")
	}

	if p.Status != QuestionStatusPending || p.Answer != nil {
		t.Errorf("Expected pending question without answer, got %s", p.Status)
	}
}

func TestQuestionValidateStatus(t *testing.T) {
	t.Parallel()

	q := &Question{DocumentID: 1, Text: "Why?", Status: "failed"}
	if err := q.Validate(); !errors.Is(err, ErrInvalidQuestionStatus) {
		t.Errorf("Expected ErrInvalidQuestionStatus, got %v", err)
	}

	q.Status = QuestionStatusAnswered
	if err := q.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for answered question without answer, got %v", err)
	}
}
