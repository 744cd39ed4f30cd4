// Package zenpress собирает HTTP-приложение: хранилище, кеш, брокер,
// сервисы и маршруты.
package zenpress

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/zenpress/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/zenpress/internal/http/handlers/auth/register"
	favoriteadd "github.com/magabrotheeeer/zenpress/internal/http/handlers/favorites/add"
	favoritelist "github.com/magabrotheeeer/zenpress/internal/http/handlers/favorites/list"
	favoriteremove "github.com/magabrotheeeer/zenpress/internal/http/handlers/favorites/remove"
	"github.com/magabrotheeeer/zenpress/internal/http/handlers/health"
	"github.com/magabrotheeeer/zenpress/internal/http/handlers/reviews/analytics"
	reviewcreate "github.com/magabrotheeeer/zenpress/internal/http/handlers/reviews/create"
	"github.com/magabrotheeeer/zenpress/internal/http/handlers/reviews/mine"
	reviewremove "github.com/magabrotheeeer/zenpress/internal/http/handlers/reviews/remove"
	reviewstats "github.com/magabrotheeeer/zenpress/internal/http/handlers/reviews/stats"
	reviewtechnique "github.com/magabrotheeeer/zenpress/internal/http/handlers/reviews/technique"
	sessioncreate "github.com/magabrotheeeer/zenpress/internal/http/handlers/sessions/create"
	sessionlist "github.com/magabrotheeeer/zenpress/internal/http/handlers/sessions/list"
	"github.com/magabrotheeeer/zenpress/internal/http/handlers/stats/complaints"
	subscriptioncreate "github.com/magabrotheeeer/zenpress/internal/http/handlers/subscription/create"
	subscriptionstatus "github.com/magabrotheeeer/zenpress/internal/http/handlers/subscription/status"
	techniqueget "github.com/magabrotheeeer/zenpress/internal/http/handlers/techniques/get"
	techniquelist "github.com/magabrotheeeer/zenpress/internal/http/handlers/techniques/list"
	"github.com/magabrotheeeer/zenpress/internal/http/handlers/users/me"
	userstats "github.com/magabrotheeeer/zenpress/internal/http/handlers/users/stats"
	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
	"github.com/magabrotheeeer/zenpress/internal/services/auth"
	"github.com/magabrotheeeer/zenpress/internal/services/favorite"
	"github.com/magabrotheeeer/zenpress/internal/services/practice"
	"github.com/magabrotheeeer/zenpress/internal/services/review"
	"github.com/magabrotheeeer/zenpress/internal/services/subscription"
	"github.com/magabrotheeeer/zenpress/internal/services/technique"
)

// Services зависимости маршрутов.
type Services struct {
	Gate          *access.Gate
	Auth          *auth.Service
	Techniques    *technique.Service
	Reviews       *review.Service
	Favorites     *favorite.Service
	Practice      *practice.Service
	Subscriptions *subscription.Service
	Health        health.Pinger
	AuthLimiter   *middlewarectx.IPLimiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware. RealIP не подключён: лимитер считает ключом
	// адрес TCP-соединения, а не заголовки клиента.
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(s.AuthLimiter, logger))
			r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		})

		// Открытые конечные точки, токен необязателен
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalAuth(s.Gate, logger))
			r.Get("/techniques", techniquelist.New(logger, s.Techniques).ServeHTTP)
			r.Get("/techniques/{id}", techniqueget.New(logger, s.Techniques).ServeHTTP)
		})
		r.Get("/reviews/stats", reviewstats.New(logger, s.Reviews).ServeHTTP)
		r.Get("/reviews/technique/{id}", reviewtechnique.New(logger, s.Reviews).ServeHTTP)
		r.Get("/stats/complaints", complaints.New(logger, s.Practice).ServeHTTP)

		// Группа с обязательной аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(s.Gate, logger))

			r.Get("/users/me", me.New(logger, s.Gate).ServeHTTP)
			r.Get("/users/stats", userstats.New(logger, s.Practice).ServeHTTP)

			r.Post("/reviews/create", reviewcreate.New(logger, s.Reviews).ServeHTTP)
			r.Get("/reviews/my-reviews", mine.New(logger, s.Reviews).ServeHTTP)
			r.Delete("/reviews/{id}", reviewremove.New(logger, s.Reviews).ServeHTTP)
			r.With(middlewarectx.RequirePremium(s.Gate, logger)).
				Get("/reviews/analytics", analytics.New(logger, s.Reviews).ServeHTTP)

			r.Post("/favorites", favoriteadd.New(logger, s.Favorites).ServeHTTP)
			r.Get("/favorites", favoritelist.New(logger, s.Favorites).ServeHTTP)
			r.Delete("/favorites/{technique_id}", favoriteremove.New(logger, s.Favorites).ServeHTTP)

			r.Post("/sessions", sessioncreate.New(logger, s.Practice).ServeHTTP)
			r.Get("/sessions", sessionlist.New(logger, s.Practice).ServeHTTP)

			r.Post("/subscription/create", subscriptioncreate.New(logger, s.Subscriptions).ServeHTTP)
			r.Get("/subscription/status", subscriptionstatus.New(logger, s.Subscriptions).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
