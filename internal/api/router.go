package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "moodchat/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a chi router with all the application's
// routes.
func NewRouter(conversationHandler *ConversationHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Liveness/readiness probe.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Standard JSON routes get a request timeout so client connections
		// cannot hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/conversations", conversationHandler.HandleListConversations)
			r.Post("/conversations", conversationHandler.HandleCreateConversation)
			r.Get("/conversations/{conversationID}", conversationHandler.HandleGetConversation)
			r.Put("/conversations/{conversationID}", conversationHandler.HandleUpdateConversation)
			r.Delete("/conversations/{conversationID}", conversationHandler.HandleDeleteConversation)
			r.Post("/conversations/{conversationID}/files", conversationHandler.HandleUploadContextFile)
			r.Get("/conversations/{conversationID}/theme", conversationHandler.HandleGetTheme)
		})
	})

	// The push channel holds its connection open for the whole session and
	// must not sit behind the timeout middleware.
	r.Get("/ws/{conversationID}", conversationHandler.HandleWebSocket)

	return r
}
