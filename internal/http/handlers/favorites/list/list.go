// Package list отдаёт избранные техники пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service отдаёт избранное с учётом доступа.
type Service interface {
	List(ctx context.Context, user *models.User) ([]*models.Technique, error)
}

// Handler обрабатывает GET /favorites.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Избранное
// @Tags Favorites
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} models.Technique
// @Failure 401 {object} response.ErrorResponse
// @Router /favorites [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorites.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	res, err := h.service.List(r.Context(), user)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if res == nil {
		res = []*models.Technique{}
	}
	response.OK(w, r, res)
}
