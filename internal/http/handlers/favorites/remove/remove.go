// Package remove реализует удаление техники из избранного.
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
)

// Service управляет избранным.
type Service interface {
	Remove(ctx context.Context, userID, techniqueID string) error
}

// Handler обрабатывает DELETE /favorites/{technique_id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Убрать из избранного
// @Tags Favorites
// @Produce  json
// @Security BearerAuth
// @Param technique_id path string true "ID техники"
// @Success 200 {object} response.Message
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Нет в избранном"
// @Router /favorites/{technique_id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorites.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Remove(r.Context(), user.ID, chi.URLParam(r, "technique_id")); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, response.Message{Message: "removed from favorites"})
}
