package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"persona-tutor/internal/handlers"
	"persona-tutor/internal/middleware"
	"persona-tutor/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	homeHandler *handlers.HomeHandler,
	sessionHandler *handlers.SessionHandler,
	chatHandler *handlers.ChatHandler,
	quizHandler *handlers.QuizHandler,
	sandboxHandler *handlers.SandboxHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS([]string{frontendURL}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Public ────
		r.Get("/home", homeHandler.Home)
		r.Get("/options", homeHandler.Options)
		r.Post("/sessions", sessionHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.Middleware)

			// ──── Session & Navigation ────
			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Put("/page", sessionHandler.SelectPage)
				r.Post("/clear-history", sessionHandler.ClearHistory)
			})

			// ──── Tutor Chat ────
			r.Post("/chat", chatHandler.Send)

			// ──── Quiz Room ────
			r.Route("/quiz", func(r chi.Router) {
				r.Get("/", quizHandler.Get)
				r.Post("/generate", quizHandler.Generate)
				r.Post("/submit", quizHandler.Submit)
			})

			// ──── Code Sandbox ────
			r.Route("/messages/{index}/snippets", func(r chi.Router) {
				r.Get("/", sandboxHandler.List)
				r.Put("/{snippet}", sandboxHandler.Edit)
				r.Post("/{snippet}/run", sandboxHandler.Run)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
