// Package list реализует HTTP-обработчик каталога техник.
//
// Токен необязателен: аноним и пользователь без действующего премиума
// получают только бесплатные техники.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Service отдаёт каталог с учётом доступа.
type Service interface {
	List(ctx context.Context, user *models.User, category string) ([]*models.Technique, error)
}

// Handler обрабатывает GET /techniques.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список техник
// @Description Премиальные техники видны только пользователям с действующим премиумом.
// @Tags Techniques
// @Produce  json
// @Param category query string false "Категория"
// @Success 200 {array} models.Technique
// @Failure 500 {object} response.ErrorResponse
// @Router /techniques [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.techniques.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	category := r.URL.Query().Get("category")
	res, err := h.service.List(r.Context(), middlewarectx.UserFromContext(r.Context()), category)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if res == nil {
		res = []*models.Technique{}
	}

	log.Debug("techniques listed", slog.String("category", category), slog.Int("count", len(res)))
	response.OK(w, r, res)
}
