// Package add реализует добавление техники в избранное.
//
// Повторное добавление той же техники даёт 400, а не молчаливый успех.
package add

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Request техника для избранного.
type Request struct {
	TechniqueID string `json:"technique_id" validate:"required"`
}

// Service управляет избранным.
type Service interface {
	Add(ctx context.Context, userID, techniqueID string) (*models.Favorite, error)
}

// Handler обрабатывает POST /favorites.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Добавить в избранное
// @Tags Favorites
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Техника"
// @Success 200 {object} models.Favorite
// @Failure 400 {object} response.ErrorResponse "Уже в избранном"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Техника не найдена"
// @Router /favorites [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.favorites.add"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		response.Fail(w, r, log, apperr.New(apperr.ErrUnauthorized, "authentication required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Invalid(w, r, err)
		return
	}

	res, err := h.service.Add(r.Context(), user.ID, req.TechniqueID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	response.OK(w, r, res)
}
