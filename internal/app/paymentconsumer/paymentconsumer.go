// Package paymentconsumer собирает потребителя подтверждений оплаты:
// читает события из очереди RabbitMQ и активирует премиум.
package paymentconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/zenpress/internal/config"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/migrations"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/subscription"
	"github.com/magabrotheeeer/zenpress/internal/storage"
)

const workers = 4

// Applier применяет подтверждение оплаты.
type Applier interface {
	ApplyPaymentConfirmation(ctx context.Context, msg models.PaymentConfirmation) (*models.Subscription, error)
}

// Handler возвращает обработчик сообщений очереди. Битый JSON, невалидное
// событие и повторный payment_id подтверждаются и отбрасываются; прочие
// ошибки возвращают сообщение в очередь.
func Handler(service Applier, log *slog.Logger) rabbitmq.Handler {
	return func(ctx context.Context, body []byte) error {
		const op = "paymentconsumer.Handle"

		var msg models.PaymentConfirmation
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Error("malformed payment confirmation", sl.Op(op), sl.Err(err))
			return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDiscard, err)
		}

		sub, err := service.ApplyPaymentConfirmation(ctx, msg)
		switch {
		case err == nil:
			log.Info("payment confirmation applied",
				sl.Op(op),
				slog.String("payment_id", msg.PaymentID),
				slog.String("subscription_id", sub.ID),
			)
			return nil
		case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotFound):
			log.Warn("payment confirmation rejected", sl.Op(op), slog.String("payment_id", msg.PaymentID), sl.Err(err))
			return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDiscard, err)
		case errors.Is(err, apperr.ErrConflict):
			log.Info("payment confirmation already applied", sl.Op(op), slog.String("payment_id", msg.PaymentID))
			return nil
		default:
			return fmt.Errorf("%s: %w", op, err)
		}
	}
}

// App потребитель очереди платежей.
type App struct {
	cfg    config.RabbitMQ
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
	handle rabbitmq.Handler
}

// New подключает хранилище и брокер и объявляет топологию.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.PaymentTopology(cfg.RabbitMQ))
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	service := subscription.NewService(db, rabbitmq.NewPublisher(ch, cfg.RabbitMQ.EventsExchange), logger)

	return &App{
		cfg:    cfg.RabbitMQ,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
		handle: Handler(service, logger),
	}, nil
}

// Run потребляет очередь до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	const op = "paymentconsumer.Run"

	done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, a.cfg.PaymentsQueue, workers, a.handle)
	if err != nil {
		a.logger.Error("failed to start payments consumer", sl.Err(err))
		a.close()
		return err
	}

	select {
	case <-ctx.Done():
		a.logger.Info("payment consumer shutting down gracefully")
		<-done
		a.close()
		return nil
	case <-done:
		a.logger.Error("payments delivery stopped")
		a.close()
		return fmt.Errorf("%s: delivery channel closed", op)
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
