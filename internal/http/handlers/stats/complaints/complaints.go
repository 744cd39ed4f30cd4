// Package complaints отдаёт самые частые жалобы по всем сессиям. Доступна без токена.
package complaints

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service считает статистику жалоб.
type Service interface {
	ComplaintStats(ctx context.Context) ([]models.ComplaintStats, error)
}

// Handler обрабатывает GET /stats/complaints.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Популярные жалобы
// @Tags Stats
// @Produce  json
// @Success 200 {array} models.ComplaintStats
// @Failure 500 {object} response.ErrorResponse
// @Router /stats/complaints [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.complaints"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ComplaintStats(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if res == nil {
		res = []models.ComplaintStats{}
	}
	response.OK(w, r, res)
}
