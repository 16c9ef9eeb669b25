// Package testutils provides testing utilities for the document Q&A service.
//
// This package contains helpers for:
// 1. Opening a migrated SQLite database per test
// 2. Creating store instances that share a connection or transaction
// 3. Inserting test documents and questions
// 4. Executing HTTP requests against a handler and asserting responses
//
// Usage:
//
//	func TestMyFeature(t *testing.T) {
//	    db := testutils.OpenSQLite(t)
//	    stores := testutils.CreateTestStores(db)
//	    doc := testutils.MustInsertDocument(t, stores.Documents)
//	    q := testutils.MustInsertQuestion(t, stores.Questions, doc.ID, "What?")
//	    // ...
//	}
package testutils
