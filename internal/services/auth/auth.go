// Package auth содержит регистрацию и вход пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/metrics"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя.
	CreateUser(ctx context.Context, user models.User) error
	// GetUserByEmail возвращает пользователя по email или apperr.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordHasher хеширует и проверяет пароли.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// TokenIssuer выпускает bearer-токены.
type TokenIssuer interface {
	GenerateToken(subject string) (string, error)
}

// Service отвечает за регистрацию и авторизацию.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *slog.Logger
	now    func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// Session результат успешной регистрации или входа.
type Session struct {
	AccessToken string
	User        *models.User
}

var errEmailTaken = apperr.New(apperr.ErrConflict, "email already registered")

// Register создает пользователя с ролью user и сразу выдает токен.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*Session, error) {
	const op = "auth.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return nil, errEmailTaken
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		// Гонка двух регистраций на один email решается уникальным индексом.
		if errors.Is(err, apperr.ErrConflict) {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return nil, errEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	s.log.Info("user registered", sl.Op(op), slog.String("user_id", user.ID))
	return &Session{AccessToken: token, User: &user}, nil
}

// Login проверяет пароль и выдает токен. Неизвестный email и неверный
// пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "auth.Login"
	invalid := apperr.New(apperr.ErrUnauthorized, "invalid credentials")

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return nil, invalid
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return nil, invalid
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	return &Session{AccessToken: token, User: user}, nil
}
