package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/docqa-api/internal/api/shared"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
	"github.com/phrazzld/docqa-api/internal/redact"
	"github.com/phrazzld/docqa-api/internal/service"
)

// QuestionHandler handles question-related HTTP requests
type QuestionHandler struct {
	questions service.QuestionService
	logger    *slog.Logger
}

// NewQuestionHandler creates a new QuestionHandler
func NewQuestionHandler(questions service.QuestionService, logger *slog.Logger) *QuestionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QuestionHandler")
	}

	return &QuestionHandler{
		questions: questions,
		logger:    logger.With(slog.String("component", "question_handler")),
	}
}

// SubmitQuestion handles POST /questions/{document_id}/question requests.
// The question is returned PENDING; its answer is generated in the background.
func (h *QuestionHandler) SubmitQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	documentID, err := getPathID(r, "document_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmitQuestionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.Int64("document_id", documentID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	q, err := h.questions.SubmitQuestion(r.Context(), documentID, req.Question)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit question")
		return
	}

	log.Debug("question submitted",
		slog.Int64("question_id", q.ID),
		slog.Int64("document_id", documentID))
	shared.RespondWithJSON(w, r, http.StatusCreated, questionToResponse(q))
}

// GetQuestion handles GET /questions/{id} requests
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	q, err := h.questions.GetQuestion(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get question")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, questionToResponse(q))
}
