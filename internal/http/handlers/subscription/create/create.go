// Package create реализует активацию премиум-подписки.
//
// Пользователь получает премиум до now + длительность плана: monthly 30 дней,
// yearly 365 дней.
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

// Request выбранный план. PaymentMethod только логируется.
type Request struct {
	Plan          string `json:"plan" validate:"required" example:"monthly"`
	PaymentMethod string `json:"payment_method,omitempty" validate:"max=50"`
}

// Service активирует подписки.
type Service interface {
	Create(ctx context.Context, userID, planName string) (*models.Subscription, error)
}

// Handler обрабатывает POST /subscription/create.
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
// @Summary Оформить подписку
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "План"
// @Success 200 {object} models.Subscription
// @Failure 400 {object} response.ErrorResponse "Неизвестный план"
// @Failure 401 {object} response.ErrorResponse
// @Router /subscription/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

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

	res, err := h.service.Create(r.Context(), user.ID, req.Plan)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("subscription created",
		slog.String("user_id", user.ID),
		slog.String("plan", res.Plan),
		slog.String("payment_method", req.PaymentMethod),
	)
	response.OK(w, r, res)
}
