package models

import "time"

// Provider источник оплаты подписки.
type Provider string

const (
	// ProviderDirect активация через POST /subscription/create.
	ProviderDirect Provider = "direct"
	// ProviderStripe подтверждение оплаты от Stripe.
	ProviderStripe Provider = "stripe"
	// ProviderCrypto подтверждение оплаты криптокошельком.
	ProviderCrypto Provider = "crypto"
)

// Valid сообщает, что провайдер известен.
func (p Provider) Valid() bool {
	switch p {
	case ProviderDirect, ProviderStripe, ProviderCrypto:
		return true
	default:
		return false
	}
}

// Plan тарифный план премиум-подписки.
type Plan struct {
	Name        string        `json:"name"`
	Duration    time.Duration `json:"-"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
}

const (
	// PlanMonthly месячный план.
	PlanMonthly = "monthly"
	// PlanYearly годовой план.
	PlanYearly = "yearly"
)

var plans = map[string]Plan{
	PlanMonthly: {Name: PlanMonthly, Duration: 30 * 24 * time.Hour, AmountCents: 2990, Currency: "BRL"},
	PlanYearly:  {Name: PlanYearly, Duration: 365 * 24 * time.Hour, AmountCents: 29990, Currency: "BRL"},
}

// LookupPlan возвращает план по имени.
func LookupPlan(name string) (Plan, bool) {
	p, ok := plans[name]
	return p, ok
}

// Subscription факт оплаченной подписки.
type Subscription struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Plan        string    `json:"plan"`
	Status      string    `json:"status"`
	Provider    Provider  `json:"provider"`
	PaymentID   *string   `json:"payment_id,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
}

// SubscriptionStatusActive статус только что созданной подписки.
const SubscriptionStatusActive = "active"

// SubscriptionStatus текущее состояние премиума пользователя.
type SubscriptionStatus struct {
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at"`
	Plan             string     `json:"plan,omitempty"`
}

// PaymentConfirmation событие подтверждённой оплаты из очереди платежей.
// Поля явные, произвольные метаданные не принимаются.
type PaymentConfirmation struct {
	PaymentID   string    `json:"payment_id"`
	UserID      string    `json:"user_id"`
	Plan        string    `json:"plan"`
	Provider    Provider  `json:"provider"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// SubscriptionActivated событие об активации премиума, публикуется в exchange событий.
type SubscriptionActivated struct {
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	Plan           string    `json:"plan"`
	Provider       Provider  `json:"provider"`
	ExpiresAt      time.Time `json:"expires_at"`
}
