package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

// ActivatePremium в одной транзакции сохраняет подписку и выставляет
// пользователю премиум со сроком подписки. Повторный payment_id даёт
// apperr.ErrConflict, неизвестный пользователь даёт apperr.ErrNotFound.
func (s *Storage) ActivatePremium(ctx context.Context, sub models.Subscription) (err error) {
	const op = "storage.ActivatePremium"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE users
			  SET is_premium = TRUE,
			      premium_expires_at = $1
			  WHERE id = $2`, sub.ExpiresAt, sub.UserID)
	if err != nil {
		return mapErr(op, err)
	}
	if err = requireAffected(op, res); err != nil {
		return err
	}

	query := `INSERT INTO subscriptions (id, user_id, plan, status, provider, payment_id,
			      started_at, expires_at, amount_cents, currency)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err = tx.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.Plan, sub.Status, string(sub.Provider), sub.PaymentID,
		sub.StartedAt, sub.ExpiresAt, sub.AmountCents, sub.Currency); err != nil {
		return mapErr(op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LatestSubscription возвращает последнюю по сроку подписку пользователя.
func (s *Storage) LatestSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.LatestSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, plan, status, provider, payment_id, started_at,
			      expires_at, amount_cents, currency
			  FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY expires_at DESC
			  LIMIT 1`
	var (
		sub      models.Subscription
		provider string
	)
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&sub.ID, &sub.UserID, &sub.Plan,
		&sub.Status, &provider, &sub.PaymentID, &sub.StartedAt, &sub.ExpiresAt,
		&sub.AmountCents, &sub.Currency); err != nil {
		return nil, mapErr(op, err)
	}
	sub.Provider = models.Provider(provider)
	sub.StartedAt = sub.StartedAt.UTC()
	sub.ExpiresAt = sub.ExpiresAt.UTC()
	return &sub, nil
}
