// Package list отдаёт сессии практики пользователя, новые первыми.
package list

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

// Service отдаёт сессии.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.PracticeSession, error)
}

// Handler обрабатывает GET /sessions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сессии практики
// @Tags Sessions
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} models.PracticeSession
// @Failure 401 {object} response.ErrorResponse
// @Router /sessions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sessions.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	res, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if res == nil {
		res = []*models.PracticeSession{}
	}
	response.OK(w, r, res)
}
