// http собирает REST-поверхность сервиса: маршруты, мидлвары, метрики.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/globalwire/newspulse/internal/auth"
	"github.com/globalwire/newspulse/internal/http/handlers"
	"github.com/globalwire/newspulse/internal/http/middleware"
	"github.com/globalwire/newspulse/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Registry включает GET /metrics; nil отключает эндпойнт.
	Registry *prometheus.Registry
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, verifier *auth.Verifier, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)
	admin := middleware.RequireAdmin(verifier)

	root.Get("/health", h.Health)
	if opts.Registry != nil {
		root.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	// Лента агрегатора.
	root.Route("/feed", func(r chi.Router) {
		r.Get("/search", h.FeedSearch)
		r.With(admin).Post("/cache/clear", h.ClearCache)
		r.Get("/{category}", h.Feed)
		r.Get("/{category}/cached", h.FeedCached)
	})

	// Редакционные статьи (публичное чтение).
	root.Get("/news", h.ListNews)
	root.Get("/news/{id}", h.NewsByID)
	root.Get("/search", h.SearchNews)

	// Редакционные статьи (админский CRUD).
	root.Route("/admin/news", func(r chi.Router) {
		r.Use(admin)
		r.Post("/", h.CreateStory)
		r.Patch("/{id}", h.UpdateStory)
		r.Delete("/{id}", h.DeleteStory)
	})

	return root
}
