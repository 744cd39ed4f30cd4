// Package stats отдаёт общую статистику отзывов. Доступна без токена.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service считает статистику.
type Service interface {
	Stats(ctx context.Context) (models.ReviewStats, error)
}

// Handler обрабатывает GET /reviews/stats.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика отзывов
// @Tags Reviews
// @Produce  json
// @Success 200 {object} models.ReviewStats
// @Failure 500 {object} response.ErrorResponse
// @Router /reviews/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Stats(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}
