package storage

import (
	"context"
	"encoding/json"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

func scanTechnique(row rowScanner) (*models.Technique, error) {
	var (
		t       models.Technique
		payload []byte
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Category, &t.IsPremium, &payload, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		t.Payload = json.RawMessage(payload)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// GetTechnique возвращает технику каталога по ID.
func (s *Storage) GetTechnique(ctx context.Context, id string) (*models.Technique, error) {
	const op = "storage.GetTechnique"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, name, category, is_premium, payload, created_at
			  FROM techniques
			  WHERE id = $1`
	t, err := scanTechnique(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return t, nil
}

// ListTechniques возвращает технику каталога, опционально по категории.
// Фильтрация по премиуму выполняется сервисом.
func (s *Storage) ListTechniques(ctx context.Context, category string) ([]*models.Technique, error) {
	const op = "storage.ListTechniques"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, name, category, is_premium, payload, created_at
			  FROM techniques
			  WHERE ($1 = '' OR category = $1)
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, category)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Technique, 0)
	for rows.Next() {
		t, err := scanTechnique(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}

// ListTechniquesByIDs возвращает технику по набору ID.
func (s *Storage) ListTechniquesByIDs(ctx context.Context, ids []string) ([]*models.Technique, error) {
	const op = "storage.ListTechniquesByIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Technique{}, nil
	}

	query := `SELECT id, name, category, is_premium, payload, created_at
			  FROM techniques
			  WHERE id = ANY($1)
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Technique, 0, len(ids))
	for rows.Next() {
		t, err := scanTechnique(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}
