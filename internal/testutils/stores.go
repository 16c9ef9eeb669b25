package testutils

import (
	"github.com/phrazzld/docqa-api/internal/platform/sqlite"
	"github.com/phrazzld/docqa-api/internal/store"
	"github.com/phrazzld/docqa-api/internal/task"
)

// TestStores holds the SQLite store implementations sharing one connection
// or transaction.
type TestStores struct {
	Documents store.DocumentStore
	Questions store.QuestionStore
	Tasks     task.TaskStore
}

// CreateTestStores creates every store over db.
func CreateTestStores(db store.DBTX) TestStores {
	logger := DiscardLogger()
	return TestStores{
		Documents: sqlite.NewDocumentStore(db, logger),
		Questions: sqlite.NewQuestionStore(db, logger),
		Tasks:     sqlite.NewTaskStore(db, logger),
	}
}
