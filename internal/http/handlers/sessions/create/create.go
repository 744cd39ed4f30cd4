// Package create реализует запись сессии практики.
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
	"github.com/magabrotheeeer/zenpress/internal/services/practice"
)

// Request данные сессии. Duration в секундах, Rating необязателен.
type Request struct {
	TechniqueID string `json:"technique_id" validate:"required"`
	Complaint   string `json:"complaint" validate:"max=200"`
	Duration    int    `json:"duration"`
	Rating      *int   `json:"rating,omitempty"`
}

// Service записывает сессии.
type Service interface {
	Create(ctx context.Context, userID string, in practice.SessionInput) (*models.PracticeSession, error)
}

// Handler обрабатывает POST /sessions.
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
// @Summary Записать сессию практики
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Сессия"
// @Success 200 {object} models.PracticeSession
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Техника не найдена"
// @Router /sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sessions.create"

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

	res, err := h.service.Create(r.Context(), user.ID, practice.SessionInput{
		TechniqueID: req.TechniqueID,
		Complaint:   req.Complaint,
		Duration:    req.Duration,
		Rating:      req.Rating,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("practice session recorded", slog.String("session_id", res.ID))
	response.OK(w, r, res)
}
