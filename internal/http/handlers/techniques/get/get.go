// Package get реализует HTTP-обработчик получения техники по ID.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service отдаёт технику с проверкой доступа.
type Service interface {
	Get(ctx context.Context, user *models.User, id string) (*models.Technique, error)
}

// Handler обрабатывает GET /techniques/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Техника по ID
// @Description Премиальная техника без действующего премиума даёт 403.
// @Tags Techniques
// @Produce  json
// @Param id path string true "ID техники"
// @Success 200 {object} models.Technique
// @Failure 403 {object} response.ErrorResponse "Нужен премиум"
// @Failure 404 {object} response.ErrorResponse
// @Router /techniques/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.techniques.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, r, "invalid id")
		return
	}

	res, err := h.service.Get(r.Context(), middlewarectx.UserFromContext(r.Context()), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}
