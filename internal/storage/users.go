package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

const userColumns = `id, name, email, password_hash, role, is_premium, premium_expires_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		expiresAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsPremium, &expiresAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.PremiumExpiresAt = nullTime(expiresAt)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// CreateUser сохраняет нового пользователя. Занятый email даёт apperr.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (id, name, email, password_hash, role, is_premium,
			      premium_expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsPremium,
		user.PremiumExpiresAt, user.CreatedAt); err != nil {
		return mapErr(op, err)
	}
	return nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email (сравнение с учётом регистра).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

// DowngradePremium сбрасывает премиум пользователя, если сохранённый срок
// истёк к моменту now. Продлённая или уже сброшенная запись не меняется,
// тогда возвращается false.
func (s *Storage) DowngradePremium(ctx context.Context, id string, now time.Time) (bool, error) {
	const op = "storage.DowngradePremium"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `UPDATE users
			  SET is_premium = FALSE,
			      premium_expires_at = NULL
			  WHERE id = $1
			    AND is_premium
			    AND premium_expires_at IS NOT NULL
			    AND premium_expires_at <= $2`
	res, err := s.DB.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
