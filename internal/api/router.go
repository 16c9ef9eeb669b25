package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/docqa-api/internal/api/middleware"
	"github.com/phrazzld/docqa-api/internal/api/shared"
	"github.com/phrazzld/docqa-api/internal/metrics"
	"github.com/phrazzld/docqa-api/internal/service"
)

// RouterDeps groups what the HTTP surface needs.
type RouterDeps struct {
	Documents service.DocumentService
	Questions service.QuestionService
	DB        Pinger
	Metrics   *metrics.Metrics

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	// QuestionLimiter throttles question submissions when enabled.
	QuestionLimiter *apiMiddleware.RateLimiter

	CORSAllowedOrigins []string
	DocsURL            string
	Logger             *slog.Logger
}

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(apiMiddleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(apiMiddleware.CORS(deps.CORSAllowedOrigins))

	// Registered before the subrouters so they inherit the JSON responses.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	documentHandler := NewDocumentHandler(deps.Documents, deps.Questions, log)
	questionHandler := NewQuestionHandler(deps.Questions, log)
	healthHandler := NewHealthHandler(deps.DB, deps.DocsURL, log)

	// Both /documents and /documents/ reach the "/" routes of the subrouter.
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", documentHandler.CreateDocument)
		r.Get("/", documentHandler.ListDocuments)
		r.Get("/{id}", documentHandler.GetDocument)
		r.Delete("/{id}", documentHandler.DeleteDocument)
		r.Get("/{id}/questions", documentHandler.ListDocumentQuestions)
	})

	r.Route("/questions", func(r chi.Router) {
		r.With(deps.QuestionLimiter.Middleware).Post("/{document_id}/question", questionHandler.SubmitQuestion)
		r.Get("/{id}", questionHandler.GetQuestion)
	})

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
