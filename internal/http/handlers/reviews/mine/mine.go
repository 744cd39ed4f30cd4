// Package mine отдаёт отзывы текущего пользователя.
package mine

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

// Response отзывы пользователя, новые первыми.
type Response struct {
	Reviews []*models.Review `json:"reviews"`
	Total   int              `json:"total"`
}

// Service отдаёт отзывы автора.
type Service interface {
	ListMine(ctx context.Context, userID string) ([]*models.Review, error)
}

// Handler обрабатывает GET /reviews/my-reviews.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои отзывы
// @Tags Reviews
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse
// @Router /reviews/my-reviews [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.mine"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	res, err := h.service.ListMine(r.Context(), user.ID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if res == nil {
		res = []*models.Review{}
	}
	response.OK(w, r, Response{Reviews: res, Total: len(res)})
}
