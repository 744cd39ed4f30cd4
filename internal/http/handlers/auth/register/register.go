// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Обработчик декодирует JSON, валидирует поля, создаёт пользователя через Service
// и сразу возвращает bearer-токен вместе с профилем.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/zenpress/internal/http/response"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
	"github.com/magabrotheeeer/zenpress/internal/services/auth"
)

// Request входные данные регистрации. Пароль ограничен 72 байтами bcrypt.
type Request struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// Response токен и профиль нового пользователя.
type Response struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type" example:"bearer"`
	User        *models.User `json:"user"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*auth.Session, error)
}

// Handler обрабатывает POST /auth/register.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью user и возвращает bearer-токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или email занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	sess, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("user_id", sess.User.ID))
	response.OK(w, r, Response{
		AccessToken: sess.AccessToken,
		TokenType:   "bearer",
		User:        access.Present(sess.User, time.Now()),
	})
}
