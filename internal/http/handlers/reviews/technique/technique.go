// Package technique отдаёт статистику отзывов по одной технике.
package technique

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service считает статистику техники.
type Service interface {
	TechniqueStats(ctx context.Context, techniqueID string) (*models.TechniqueReviewStats, error)
}

// Handler обрабатывает GET /reviews/technique/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика отзывов техники
// @Tags Reviews
// @Produce  json
// @Param id path string true "ID техники"
// @Success 200 {object} models.TechniqueReviewStats
// @Failure 404 {object} response.ErrorResponse
// @Router /reviews/technique/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.technique"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.TechniqueStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}
