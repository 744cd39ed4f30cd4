// Package analytics отдаёт панель аналитики отзывов. Маршрут закрыт
// RequireAuth и RequirePremium.
package analytics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/review"
)

// Service строит аналитику за окно.
type Service interface {
	Analytics(ctx context.Context, days int) (*models.ReviewAnalytics, error)
}

// Handler обрабатывает GET /reviews/analytics.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Аналитика отзывов
// @Description Разбивка по дням, рейтинг техник и последние отзывы за окно.
// @Tags Reviews
// @Produce  json
// @Security BearerAuth
// @Param days query int false "Окно в днях, 1..365" default(30)
// @Success 200 {object} models.ReviewAnalytics
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Нужен премиум"
// @Router /reviews/analytics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.analytics"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	days := review.DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Info("invalid days parameter", slog.String("days", raw))
			response.BadRequest(w, r, "days must be an integer")
			return
		}
		days = n
	}

	res, err := h.service.Analytics(r.Context(), days)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}
