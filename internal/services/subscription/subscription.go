// Package subscription активирует премиум по тарифным планам и подтверждениям оплаты.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/metrics"
	"github.com/magabrotheeeer/zenpress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

// Repository хранилище подписок.
type Repository interface {
	// ActivatePremium сохраняет подписку и выставляет премиум одной транзакцией.
	ActivatePremium(ctx context.Context, sub models.Subscription) error
	// LatestSubscription возвращает последнюю подписку пользователя.
	LatestSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Service управляет подписками.
type Service struct {
	repo   Repository
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт Service. events может быть nil, тогда события не публикуются.
func NewService(repo Repository, events EventPublisher, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create оформляет подписку по плану и сразу включает премиум
// со сроком now + длительность плана.
func (s *Service) Create(ctx context.Context, userID, planName string) (*models.Subscription, error) {
	const op = "subscription.Create"

	plan, ok := models.LookupPlan(planName)
	if !ok {
		return nil, apperr.New(apperr.ErrValidation, fmt.Sprintf("unknown plan %q", planName))
	}

	sub, err := s.activate(ctx, userID, plan, models.ProviderDirect, nil, plan.AmountCents, plan.Currency)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ApplyPaymentConfirmation активирует план по подтверждённой оплате.
// Повторный payment_id даёт apperr.ErrConflict.
func (s *Service) ApplyPaymentConfirmation(ctx context.Context, msg models.PaymentConfirmation) (*models.Subscription, error) {
	const op = "subscription.ApplyPaymentConfirmation"

	if err := validateConfirmation(msg); err != nil {
		metrics.PaymentEvents.WithLabelValues(string(msg.Provider), "invalid").Inc()
		return nil, err
	}
	plan, _ := models.LookupPlan(msg.Plan)

	amount, currency := plan.AmountCents, plan.Currency
	if msg.AmountCents > 0 {
		amount = msg.AmountCents
	}
	if msg.Currency != "" {
		currency = msg.Currency
	}

	paymentID := msg.PaymentID
	sub, err := s.activate(ctx, msg.UserID, plan, msg.Provider, &paymentID, amount, currency)
	if err != nil {
		result := "error"
		if errors.Is(err, apperr.ErrConflict) {
			result = "duplicate"
		}
		metrics.PaymentEvents.WithLabelValues(string(msg.Provider), result).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PaymentEvents.WithLabelValues(string(msg.Provider), "ok").Inc()
	return sub, nil
}

func validateConfirmation(msg models.PaymentConfirmation) error {
	switch {
	case msg.PaymentID == "":
		return apperr.New(apperr.ErrValidation, "payment_id is required")
	case msg.UserID == "":
		return apperr.New(apperr.ErrValidation, "user_id is required")
	case !msg.Provider.Valid() || msg.Provider == models.ProviderDirect:
		return apperr.New(apperr.ErrValidation, fmt.Sprintf("unsupported provider %q", msg.Provider))
	case msg.AmountCents < 0:
		return apperr.New(apperr.ErrValidation, "amount_cents must not be negative")
	}
	if _, ok := models.LookupPlan(msg.Plan); !ok {
		return apperr.New(apperr.ErrValidation, fmt.Sprintf("unknown plan %q", msg.Plan))
	}
	return nil
}

func (s *Service) activate(ctx context.Context, userID string, plan models.Plan, provider models.Provider,
	paymentID *string, amount int64, currency string) (*models.Subscription, error) {
	now := s.now().UTC()
	sub := models.Subscription{
		ID:          uuid.NewString(),
		UserID:      userID,
		Plan:        plan.Name,
		Status:      models.SubscriptionStatusActive,
		Provider:    provider,
		PaymentID:   paymentID,
		StartedAt:   now,
		ExpiresAt:   now.Add(plan.Duration),
		AmountCents: amount,
		Currency:    currency,
	}
	if err := s.repo.ActivatePremium(ctx, sub); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		case errors.Is(err, apperr.ErrConflict):
			return nil, apperr.New(apperr.ErrConflict, "payment already applied")
		}
		return nil, err
	}

	log := s.log.With(
		slog.String("user_id", userID),
		slog.String("plan", plan.Name),
		slog.String("provider", string(provider)),
	)
	log.Info("premium activated", slog.Time("expires_at", sub.ExpiresAt))
	s.publishActivated(ctx, log, sub)
	return &sub, nil
}

// publishActivated отправляет событие активации. Ошибка публикации не
// отменяет уже сохранённую подписку.
func (s *Service) publishActivated(ctx context.Context, log *slog.Logger, sub models.Subscription) {
	if s.events == nil {
		return
	}
	event := models.SubscriptionActivated{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Plan:           sub.Plan,
		Provider:       sub.Provider,
		ExpiresAt:      sub.ExpiresAt,
	}
	if err := s.events.Publish(ctx, rabbitmq.RoutingKeySubscriptionActivated, event); err != nil {
		log.Warn("failed to publish subscription event", sl.Err(err))
	}
}

// Status возвращает действующее состояние премиума пользователя.
func (s *Service) Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error) {
	const op = "subscription.Status"

	if !access.EffectivePremium(user, s.now()) {
		return &models.SubscriptionStatus{}, nil
	}

	status := &models.SubscriptionStatus{
		IsPremium:        true,
		PremiumExpiresAt: user.PremiumExpiresAt,
	}
	latest, err := s.repo.LatestSubscription(ctx, user.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	default:
		status.Plan = latest.Plan
	}
	return status, nil
}
