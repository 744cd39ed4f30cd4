package storage

import (
	"context"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

// AddFavorite добавляет технику в избранное. Повтор даёт apperr.ErrConflict.
func (s *Storage) AddFavorite(ctx context.Context, fav models.Favorite) error {
	const op = "storage.AddFavorite"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO favorites (id, user_id, technique_id, created_at)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		fav.ID, fav.UserID, fav.TechniqueID, fav.CreatedAt); err != nil {
		return mapErr(op, err)
	}
	return nil
}

// RemoveFavorite удаляет технику из избранного. Отсутствие даёт apperr.ErrNotFound.
func (s *Storage) RemoveFavorite(ctx context.Context, userID, techniqueID string) error {
	const op = "storage.RemoveFavorite"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND technique_id = $2`, userID, techniqueID)
	if err != nil {
		return mapErr(op, err)
	}
	return requireAffected(op, res)
}

// ListFavoriteIDs возвращает ID техник из избранного пользователя.
func (s *Storage) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	const op = "storage.ListFavoriteIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT technique_id FROM favorites WHERE user_id = $1 ORDER BY created_at, technique_id LIMIT 100`, userID)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return ids, nil
}
