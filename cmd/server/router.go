package main

import (
	"net/http"

	"github.com/phrazzld/docqa-api/internal/api"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// docsURL is reported by the root endpoint.
const docsURL = "/docs"

// setupRouter builds the HTTP handler for the application.
func (app *application) setupRouter() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Documents:          app.documentService,
		Questions:          app.questionService,
		DB:                 app.db,
		Metrics:            app.metrics,
		MetricsHandler:     promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}),
		QuestionLimiter:    app.questionLimiter,
		CORSAllowedOrigins: app.config.Server.CORSAllowedOrigins,
		DocsURL:            docsURL,
		Logger:             app.logger,
	})
}
