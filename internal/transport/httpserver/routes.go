package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pentrypal-go/internal/config"
	"pentrypal-go/internal/metrics"
	"pentrypal-go/internal/transport/httpserver/handler"
	authmw "pentrypal-go/internal/transport/httpserver/middleware"
	"pentrypal-go/internal/transport/ws"
	"pentrypal-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, feed *ws.FeedServer, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewTokenAuth(cfg.Auth, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			// WebSocket upgrades stay outside the request timeout.
			r.Get("/ws", feed.Subscribe)

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(30 * time.Second))

				r.Get("/lists", handlers.ListLists)
				r.Post("/lists", handlers.CreateList)
				r.Get("/lists/{list_id}", handlers.GetList)
				r.Post("/lists/{list_id}/archive", handlers.ArchiveList)
				r.Post("/lists/{list_id}/items", handlers.CreateItem)
				r.Patch("/lists/{list_id}/items/{item_id}", handlers.EditItem)
				r.Put("/lists/{list_id}/items/{item_id}/completion", handlers.UpdateItemCompletion)
				r.Post("/lists/{list_id}/collaborators", handlers.AddCollaborator)
				r.Delete("/lists/{list_id}/collaborators/{user_id}", handlers.RemoveCollaborator)

				r.Get("/session", handlers.GetSession)
				r.Post("/session/select", handlers.SelectList)
				r.Post("/session/deselect", handlers.DeselectList)
				r.Post("/session/toggle", handlers.ToggleItem)
				r.Post("/session/amount", handlers.ConfirmAmount)
				r.Post("/session/amount/cancel", handlers.CancelAmount)
				r.Post("/session/finish", handlers.RequestFinish)
				r.Post("/session/archive", handlers.ConfirmArchive)
			})
		})
	})

	return r
}
