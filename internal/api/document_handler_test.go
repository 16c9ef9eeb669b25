package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/phrazzld/docqa-api/internal/domain"
	"github.com/phrazzld/docqa-api/internal/service"
	"github.com/phrazzld/docqa-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocument(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           any
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "created",
			path:           "/documents/",
			body:           CreateDocumentRequest{Title: "Handbook", Content: "All staff get 25 days of leave."},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "created without trailing slash",
			path:           "/documents",
			body:           CreateDocumentRequest{Title: "Handbook", Content: "All staff get 25 days of leave."},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			path:           "/documents/",
			body:           `{"title": "x",`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "empty body",
			path:           "/documents/",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "missing title",
			path:           "/documents/",
			body:           map[string]string{"content": "text"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid title: required field",
		},
		{
			name:           "title too long",
			path:           "/documents/",
			body:           CreateDocumentRequest{Title: strings.Repeat("a", 256), Content: "text"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid title: too long",
		},
		{
			name:           "domain validation",
			path:           "/documents/",
			body:           CreateDocumentRequest{Title: "   ", Content: "text"},
			serviceErr:     domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyContent),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid title: cannot be empty",
		},
		{
			name:           "store failure",
			path:           "/documents/",
			body:           CreateDocumentRequest{Title: "Handbook", Content: "text"},
			serviceErr:     service.NewDocumentServiceError("create_document", "failed to save document", errors.New("disk full")),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to create document",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs := &MockDocumentService{
				CreateDocumentFn: func(ctx context.Context, title, content string) (*domain.Document, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					doc := sampleDocument(7)
					doc.Title, doc.Content = title, content
					return doc, nil
				},
			}
			router := newTestRouter(docs, &MockQuestionService{})

			rec := testutils.DoRequest(t, router, http.MethodPost, tc.path, tc.body)

			if tc.expectedError != "" {
				testutils.AssertErrorResponse(t, rec, tc.expectedStatus, tc.expectedError)
				return
			}
			require.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())

			var resp DocumentResponse
			testutils.DecodeJSON(t, rec, &resp)
			assert.Equal(t, int64(7), resp.ID)
			assert.Equal(t, "Handbook", resp.Title)
			assert.Nil(t, resp.UpdatedAt)
		})
	}
}

func TestGetDocument(t *testing.T) {
	docs := &MockDocumentService{
		GetDocumentFn: func(ctx context.Context, id int64) (*domain.Document, error) {
			if id == 404 {
				return nil, service.ErrDocumentNotFound
			}
			return sampleDocument(id), nil
		},
	}
	router := newTestRouter(docs, &MockQuestionService{})

	t.Run("found", func(t *testing.T) {
		rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/3", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp DocumentResponse
		testutils.DecodeJSON(t, rec, &resp)
		assert.Equal(t, int64(3), resp.ID)
		assert.Equal(t, fixedTime, resp.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/404", nil)
		testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "Document not found")
	})

	for _, bad := range []string{"abc", "0", "-1", "1.5"} {
		t.Run("bad id "+bad, func(t *testing.T) {
			rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/"+bad, nil)
			testutils.AssertErrorResponse(t, rec, http.StatusBadRequest, "Invalid id")
		})
	}
}

func TestListDocuments(t *testing.T) {
	var gotLimit, gotOffset int
	docs := &MockDocumentService{
		ListDocumentsFn: func(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.Document{sampleDocument(1), sampleDocument(2)}, nil
		},
	}
	router := newTestRouter(docs, &MockQuestionService{})

	t.Run("defaults", func(t *testing.T) {
		rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []DocumentResponse
		testutils.DecodeJSON(t, rec, &resp)
		assert.Len(t, resp, 2)
		assert.Equal(t, DefaultListLimit, gotLimit)
		assert.Equal(t, 0, gotOffset)
	})

	t.Run("explicit page capped", func(t *testing.T) {
		rec := testutils.DoRequest(t, router, http.MethodGet, "/documents?limit=5000&offset=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, MaxListLimit, gotLimit)
		assert.Equal(t, 10, gotOffset)
	})

	t.Run("invalid paging", func(t *testing.T) {
		for _, q := range []string{"limit=abc", "limit=0", "offset=-1"} {
			rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		docs.ListDocumentsFn = func(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
			return nil, nil
		}
		rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestDeleteDocument(t *testing.T) {
	docs := &MockDocumentService{
		DeleteDocumentFn: func(ctx context.Context, id int64) error {
			if id == 9 {
				return service.ErrDocumentNotFound
			}
			return nil
		},
	}
	router := newTestRouter(docs, &MockQuestionService{})

	rec := testutils.DoRequest(t, router, http.MethodDelete, "/documents/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = testutils.DoRequest(t, router, http.MethodDelete, "/documents/9", nil)
	testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "Document not found")
}

func TestListDocumentQuestions(t *testing.T) {
	questions := &MockQuestionService{
		ListQuestionsByDocumentFn: func(ctx context.Context, documentID int64) ([]*domain.Question, error) {
			if documentID == 9 {
				return nil, service.ErrDocumentNotFound
			}
			return []*domain.Question{sampleQuestion(1, documentID), sampleQuestion(2, documentID)}, nil
		},
	}
	router := newTestRouter(&MockDocumentService{}, questions)

	rec := testutils.DoRequest(t, router, http.MethodGet, "/documents/4/questions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []QuestionResponse
	testutils.DecodeJSON(t, rec, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, int64(4), resp[0].DocumentID)

	rec = testutils.DoRequest(t, router, http.MethodGet, "/documents/9/questions", nil)
	testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "Document not found")
}
