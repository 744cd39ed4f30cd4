// Package remove реализует удаление отзыва автором или администратором.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service удаляет отзывы.
type Service interface {
	Delete(ctx context.Context, user *models.User, reviewID string) error
}

// Handler обрабатывает DELETE /reviews/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить отзыв
// @Tags Reviews
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID отзыва"
// @Success 200 {object} response.Message
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Чужой отзыв"
// @Failure 404 {object} response.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), user, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("review deleted", slog.String("review_id", id), slog.String("user_id", user.ID))
	response.OK(w, r, response.Message{Message: "review deleted"})
}
