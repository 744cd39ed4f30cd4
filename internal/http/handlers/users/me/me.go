// Package me отдаёт профиль текущего пользователя.
package me

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

// Clock источник текущего времени.
type Clock interface {
	Now() time.Time
}

// Handler обрабатывает GET /users/me.
type Handler struct {
	log   *slog.Logger
	clock Clock
}

// New создает Handler.
func New(log *slog.Logger, clock Clock) *Handler {
	return &Handler{log: log, clock: clock}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Профиль с фактическим статусом премиума.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} response.ErrorResponse
// @Router /users/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	response.OK(w, r, access.Present(user, h.clock.Now()))
}
