package rabbitmq

import "github.com/magabrotheeeer/zenpress/internal/config"

// Ключи маршрутизации событий.
const (
	RoutingKeyPaymentConfirmed      = "payment.confirmed"
	RoutingKeySubscriptionActivated = "subscription.activated"
)

const prefetchCount = 10

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Topology обменник и привязанные к нему очереди.
type Topology struct {
	Exchange string
	Queues   []QueueConfig
}

// PaymentTopology топология для подтверждений оплаты и событий активации подписки.
func PaymentTopology(cfg config.RabbitMQ) Topology {
	return Topology{
		Exchange: cfg.EventsExchange,
		Queues: []QueueConfig{
			{QueueName: cfg.PaymentsQueue, RoutingKey: RoutingKeyPaymentConfirmed},
		},
	}
}
