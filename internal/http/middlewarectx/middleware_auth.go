// Package middlewarectx содержит HTTP middleware доступа.
//
// RequireAuth и OptionalAuth извлекают bearer-токен из заголовка Authorization,
// передают его гейту доступа и кладут пользователя в контекст запроса.
// RequirePremium пропускает только пользователей с действующим премиумом.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ пользователя в контексте.
const User Key = "user"

// Resolver определяет вызывающего по токену.
type Resolver interface {
	Resolve(ctx context.Context, token string, requireAuth bool) access.Decision
}

// PremiumChecker проверяет действующий премиум.
type PremiumChecker interface {
	RequirePremium(ctx context.Context, user *models.User) error
}

// UserFromContext возвращает пользователя запроса или nil для анонима.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(User).(*models.User)
	return u
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// BearerToken возвращает токен из заголовка Authorization или пустую строку.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireAuth пропускает только аутентифицированные запросы, иначе 401.
func RequireAuth(gate Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(gate, log, true)
}

// OptionalAuth кладёт пользователя в контекст, если токен валиден.
// Отсутствующий или невалидный токен означает анонимный запрос.
func OptionalAuth(gate Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(gate, log, false)
}

func authenticate(gate Resolver, log *slog.Logger, requireAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.authenticate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			d := gate.Resolve(r.Context(), BearerToken(r), requireAuth)
			switch d.Outcome {
			case access.Rejected:
				response.Fail(w, r, log, d.Err)
				return
			case access.Authenticated:
				r = r.WithContext(WithUser(r.Context(), d.User))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePremium ставится после RequireAuth. Без действующего премиума
// запрос получает 403.
func RequirePremium(checker PremiumChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequirePremium"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user := UserFromContext(r.Context())
			if user == nil {
				response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
				return
			}
			if err := checker.RequirePremium(r.Context(), user); err != nil {
				response.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
