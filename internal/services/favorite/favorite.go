// Package favorite управляет избранными техниками пользователя.
package favorite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

// Repository хранилище избранного.
type Repository interface {
	AddFavorite(ctx context.Context, fav models.Favorite) error
	RemoveFavorite(ctx context.Context, userID, techniqueID string) error
	ListFavoriteIDs(ctx context.Context, userID string) ([]string, error)
	ListTechniquesByIDs(ctx context.Context, ids []string) ([]*models.Technique, error)
}

// TechniqueLookup проверяет, что техника существует.
type TechniqueLookup interface {
	Lookup(ctx context.Context, id string) (*models.Technique, error)
}

// Service реализует добавление, удаление и просмотр избранного.
type Service struct {
	repo       Repository
	techniques TechniqueLookup
	now        func() time.Time
}

// NewService создаёт Service.
func NewService(repo Repository, techniques TechniqueLookup) *Service {
	return &Service{repo: repo, techniques: techniques, now: time.Now}
}

// Add добавляет технику в избранное. Повтор даёт apperr.ErrConflict.
func (s *Service) Add(ctx context.Context, userID, techniqueID string) (*models.Favorite, error) {
	const op = "favorite.Add"

	if _, err := s.techniques.Lookup(ctx, techniqueID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fav := models.Favorite{
		ID:          uuid.NewString(),
		UserID:      userID,
		TechniqueID: techniqueID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.AddFavorite(ctx, fav); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.New(apperr.ErrConflict, "technique already in favorites")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &fav, nil
}

// Remove убирает технику из избранного. Отсутствие даёт apperr.ErrNotFound.
func (s *Service) Remove(ctx context.Context, userID, techniqueID string) error {
	const op = "favorite.Remove"

	if err := s.repo.RemoveFavorite(ctx, userID, techniqueID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "favorite not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает избранные техники, видимые пользователю сейчас.
// Премиум-техники, добавленные во время подписки, скрываются после её окончания.
func (s *Service) List(ctx context.Context, user *models.User) ([]*models.Technique, error) {
	const op = "favorite.List"

	ids, err := s.repo.ListFavoriteIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	techniques, err := s.repo.ListTechniquesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return access.FilterVisible(user, techniques, s.now()), nil
}

// IDs возвращает ID избранных техник пользователя.
func (s *Service) IDs(ctx context.Context, userID string) ([]string, error) {
	const op = "favorite.IDs"

	ids, err := s.repo.ListFavoriteIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
