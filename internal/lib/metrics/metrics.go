// Package metrics объявляет счётчики Prometheus, которые публикуются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions считает решения гейта доступа по исходу.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenpress",
		Name:      "access_decisions_total",
		Help:      "Access gate decisions by outcome.",
	}, []string{"outcome"})

	// PremiumDowngrades считает ленивые понижения истёкшего премиума.
	PremiumDowngrades = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zenpress",
		Name:      "premium_downgrades_total",
		Help:      "Lazy premium downgrades persisted by the access gate.",
	})

	// ReviewsRecorded считает созданные отзывы по корзине оценки.
	ReviewsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenpress",
		Name:      "reviews_recorded_total",
		Help:      "Reviews recorded by sentiment bucket.",
	}, []string{"sentiment"})

	// AuthAttempts считает регистрации и входы по результату.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenpress",
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts by result.",
	}, []string{"action", "result"})

	// PaymentEvents считает обработанные события подтверждения оплаты.
	PaymentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenpress",
		Name:      "payment_events_total",
		Help:      "Payment confirmation events by provider and result.",
	}, []string{"provider", "result"})
)
