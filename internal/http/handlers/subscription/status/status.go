// Package status отдаёт фактический статус премиума.
package status

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

// Service вычисляет статус подписки.
type Service interface {
	Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error)
}

// Handler обрабатывает GET /subscription/status.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Tags Subscription
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.SubscriptionStatus
// @Failure 401 {object} response.ErrorResponse
// @Router /subscription/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	res, err := h.service.Status(r.Context(), user)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}
