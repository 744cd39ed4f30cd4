// Package create реализует HTTP-обработчик создания отзыва.
//
// Рейтинг проверяется сервисом: значение вне [1,5] даёт 400, неизвестная
// техника 404.
package create

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

// Request данные нового отзыва. SessionDuration в секундах, 0 означает значение по умолчанию.
type Request struct {
	TechniqueID     string `json:"technique_id" validate:"required"`
	Rating          int    `json:"rating"`
	Comment         string `json:"comment" validate:"max=2000"`
	SessionDuration int    `json:"session_duration"`
}

// Service записывает отзывы.
type Service interface {
	Record(ctx context.Context, user *models.User, in models.ReviewInput) (*models.Review, error)
}

// Handler обрабатывает POST /reviews/create.
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
// @Summary Создать отзыв
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Отзыв"
// @Success 200 {object} models.Review
// @Failure 400 {object} response.ErrorResponse "Рейтинг вне [1,5]"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Техника не найдена"
// @Router /reviews/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.create"

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
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	res, err := h.service.Record(r.Context(), user, models.ReviewInput{
		TechniqueID:     req.TechniqueID,
		Rating:          req.Rating,
		Comment:         req.Comment,
		SessionDuration: req.SessionDuration,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("review created", slog.String("review_id", res.ID))
	response.OK(w, r, res)
}
