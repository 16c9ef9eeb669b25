// Package generation defines the boundary between the question lifecycle and
// whatever produces answer text. The only implementation shipped is
// MockGenerator, which derives a deterministic answer from the question.
package generation
