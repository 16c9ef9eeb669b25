// Package service contains the application use cases of the document Q&A
// service. It orchestrates domain entities and the record stores defined in
// internal/store, applies transactional boundaries, and hands accepted
// questions to the background task runner.
//
// Expected conditions are reported with sentinel errors (ErrDocumentNotFound,
// ErrQuestionNotFound) and domain.ValidationError; everything else is wrapped
// in an operation-specific error type so the API layer can map it to a safe
// response without leaking internals.
package service
