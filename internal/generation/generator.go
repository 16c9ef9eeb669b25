package generation

import (
	"context"
	"fmt"
	"strings"
)

// AnswerPrefix is prepended to the question text by MockGenerator.
const AnswerPrefix = "This is a generated answer to your question: "

// Generator produces an answer for a question.
type Generator interface {
	// GenerateAnswer returns the answer text for questionText.
	// Implementations must honor ctx cancellation.
	GenerateAnswer(ctx context.Context, questionText string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, questionText string) (string, error)

// GenerateAnswer calls f(ctx, questionText).
func (f GeneratorFunc) GenerateAnswer(ctx context.Context, questionText string) (string, error) {
	return f(ctx, questionText)
}

// MockGenerator synthesizes answers without any external service.
// The answer is a pure function of the question text.
type MockGenerator struct{}

// NewMockGenerator returns a MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

var _ Generator = (*MockGenerator)(nil)

// GenerateAnswer implements Generator.
func (g *MockGenerator) GenerateAnswer(ctx context.Context, questionText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(questionText) == "" {
		return "", ErrEmptyQuestion
	}
	return AnswerPrefix + questionText, nil
}
