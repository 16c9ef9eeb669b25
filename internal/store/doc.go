// Package store defines the record store interfaces for documents and
// questions, the shared error vocabulary, and the transaction helper every
// mutation goes through. Implementations live under internal/platform.
package store
