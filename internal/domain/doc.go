// Package domain contains the core business entities of the document Q&A
// service: documents, the questions asked about them, and the question
// status state machine. It is independent of any storage or transport.
package domain
