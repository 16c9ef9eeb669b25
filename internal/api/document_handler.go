package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/docqa-api/internal/api/shared"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/redact"
	"github.com/phrazzld/docqa-api/internal/service"
)

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	documents service.DocumentService
	questions service.QuestionService
	logger    *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(
	documents service.DocumentService,
	questions service.QuestionService,
	logger *slog.Logger,
) *DocumentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DocumentHandler")
	}

	return &DocumentHandler{
		documents: documents,
		questions: questions,
		logger:    logger.With(slog.String("component", "document_handler")),
	}
}

// CreateDocument handles POST /documents/ requests
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDocumentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	doc, err := h.documents.CreateDocument(r.Context(), req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create document")
		return
	}

	log.Debug("document created", slog.Int64("document_id", doc.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, documentToResponse(doc))
}

// GetDocument handles GET /documents/{id} requests
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	doc, err := h.documents.GetDocument(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get document")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, documentToResponse(doc))
}

// ListDocuments handles GET /documents/ requests
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	docs, err := h.documents.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list documents")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, documentsToResponse(docs))
}

// DeleteDocument handles DELETE /documents/{id} requests.
// Questions of the document are removed with it.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.documents.DeleteDocument(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete document")
		return
	}

	log.Info("document deleted", slog.Int64("document_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListDocumentQuestions handles GET /documents/{id}/questions requests
func (h *DocumentHandler) ListDocumentQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	questions, err := h.questions.ListQuestionsByDocument(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list questions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, questionsToResponse(questions))
}
