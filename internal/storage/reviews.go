package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

const reviewColumns = `id, user_id, technique_id, technique_name, rating, comment,
			      session_duration, user_premium, created_at`

func scanReview(row rowScanner) (*models.Review, error) {
	var r models.Review
	if err := row.Scan(&r.ID, &r.UserID, &r.TechniqueID, &r.TechniqueName, &r.Rating,
		&r.Comment, &r.SessionDuration, &r.UserPremium, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

// CreateReview добавляет неизменяемую запись отзыва.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) error {
	const op = "storage.CreateReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO reviews (` + reviewColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := s.DB.ExecContext(ctx, query,
		review.ID, review.UserID, review.TechniqueID, review.TechniqueName, review.Rating,
		review.Comment, review.SessionDuration, review.UserPremium, review.CreatedAt); err != nil {
		return mapErr(op, err)
	}
	return nil
}

// GetReview возвращает отзыв по ID.
func (s *Storage) GetReview(ctx context.Context, id string) (*models.Review, error) {
	const op = "storage.GetReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	r, err := scanReview(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return r, nil
}

// DeleteReview удаляет отзыв. Отсутствующий отзыв даёт apperr.ErrNotFound.
func (s *Storage) DeleteReview(ctx context.Context, id string) error {
	const op = "storage.DeleteReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err)
	}
	return requireAffected(op, res)
}

// ListReviews возвращает отзывы по фильтру, новые первыми.
func (s *Storage) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]*models.Review, error) {
	const op = "storage.ListReviews"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	if filter.TechniqueID != "" {
		args = append(args, filter.TechniqueID)
		conds = append(conds, fmt.Sprintf("technique_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}
