package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

// CreateSession сохраняет сессию практики.
func (s *Storage) CreateSession(ctx context.Context, session models.PracticeSession) error {
	const op = "storage.CreateSession"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO practice_sessions (id, user_id, technique_id, technique_name,
			      complaint, duration, rating, date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.DB.ExecContext(ctx, query,
		session.ID, session.UserID, session.TechniqueID, session.TechniqueName,
		session.Complaint, session.Duration, session.Rating, session.Date); err != nil {
		return mapErr(op, err)
	}
	return nil
}

// ListSessions возвращает сессии пользователя, новые первыми.
func (s *Storage) ListSessions(ctx context.Context, userID string, limit int) ([]*models.PracticeSession, error) {
	const op = "storage.ListSessions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, technique_id, technique_name, complaint, duration, rating, date
			  FROM practice_sessions
			  WHERE user_id = $1
			  ORDER BY date DESC, id
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.PracticeSession, 0)
	for rows.Next() {
		var (
			p      models.PracticeSession
			rating sql.NullInt32
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.TechniqueID, &p.TechniqueName,
			&p.Complaint, &p.Duration, &rating, &p.Date); err != nil {
			return nil, mapErr(op, err)
		}
		if rating.Valid {
			v := int(rating.Int32)
			p.Rating = &v
		}
		p.Date = p.Date.UTC()
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}

// ComplaintCounts группирует все сессии по жалобе. Recent считает сессии с
// recentSince, Previous сессии в окне [previousSince, recentSince).
func (s *Storage) ComplaintCounts(ctx context.Context, recentSince, previousSince time.Time, limit int) ([]models.ComplaintCount, error) {
	const op = "storage.ComplaintCounts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT complaint,
			         COUNT(*),
			         COUNT(*) FILTER (WHERE date >= $1),
			         COUNT(*) FILTER (WHERE date >= $2 AND date < $1)
			  FROM practice_sessions
			  GROUP BY complaint
			  ORDER BY COUNT(*) DESC, complaint
			  LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, query, recentSince, previousSince, limit)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.ComplaintCount, 0)
	for rows.Next() {
		var c models.ComplaintCount
		if err := rows.Scan(&c.Complaint, &c.Total, &c.Recent, &c.Previous); err != nil {
			return nil, mapErr(op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return result, nil
}
