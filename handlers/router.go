package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает маршруты: API под /api и файловый сервер webDir для остального
func NewRouter(h *Handler, webDir string, debug bool) http.Handler {
	router := chi.NewRouter()

	// файловый сервер
	fs := http.FileServer(http.Dir(webDir))
	router.Handle("/*", fs)

	// обработчики API
	router.Route("/api", func(api chi.Router) {
		if debug {
			api.Use(middleware.Logger)
		}
		api.Use(middleware.Recoverer)
		api.Post("/signin", h.AuthHandler)

		api.Group(func(r chi.Router) {
			// Middleware для проверки аутентификации
			r.Use(h.AuthMiddleware)
			r.Get("/tasks", h.GetTasks)
			r.Post("/tasks", h.PostTask)
			r.Post("/tasks/save_all", h.SaveAll)
			r.Get("/tasks/export", h.ExportTasks)
			r.Get("/utils/weekday", h.WeekdayHandler)
			r.Get("/utils/part_of_day", h.PartOfDayHandler)
		})
	})

	return router
}
