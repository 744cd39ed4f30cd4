// Package technique отдаёт каталог техник с учётом премиум-доступа.
package technique

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/zenpress/internal/cache"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

// Repository источник каталога.
type Repository interface {
	GetTechnique(ctx context.Context, id string) (*models.Technique, error)
	ListTechniques(ctx context.Context, category string) ([]*models.Technique, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ErrNotFound техника отсутствует в каталоге.
var ErrNotFound = apperr.New(apperr.ErrNotFound, "technique not found")

// Service читает каталог через кеш. Ошибки кеша не прерывают запрос.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// NewService создаёт Service. cache может быть nil.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// List возвращает технику категории (пустая строка означает все),
// видимую вызывающему. user может быть nil.
func (s *Service) List(ctx context.Context, user *models.User, category string) ([]*models.Technique, error) {
	const op = "technique.List"

	var all []*models.Technique
	key := cache.TechniqueListKey(category)
	if !s.fromCache(ctx, op, key, &all) {
		var err error
		all, err = s.repo.ListTechniques(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.toCache(ctx, op, key, all)
	}

	return access.FilterVisible(user, all, s.now()), nil
}

// Get возвращает технику. Премиум-техника для вызывающего без
// действующего премиума даёт apperr.ErrForbidden.
func (s *Service) Get(ctx context.Context, user *models.User, id string) (*models.Technique, error) {
	t, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(user, t, s.now()) {
		return nil, apperr.New(apperr.ErrForbidden, "premium subscription required")
	}
	return t, nil
}

// Lookup возвращает технику без проверки доступа. Используется отзывами,
// избранным и сессиями для проверки ссылки при записи.
func (s *Service) Lookup(ctx context.Context, id string) (*models.Technique, error) {
	const op = "technique.Lookup"

	var t models.Technique
	key := cache.TechniqueKey(id)
	if s.fromCache(ctx, op, key, &t) {
		return &t, nil
	}

	found, err := s.repo.GetTechnique(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.toCache(ctx, op, key, found)
	return found, nil
}

func (s *Service) fromCache(ctx context.Context, op, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn("cache read failed", sl.Op(op), slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (s *Service) toCache(ctx context.Context, op, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("cache write failed", sl.Op(op), slog.String("key", key), sl.Err(err))
	}
}
