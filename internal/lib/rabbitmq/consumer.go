package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
)

// ErrDiscard сообщает потребителю, что сообщение нельзя обработать никогда:
// оно подтверждается и отбрасывается без повторной доставки.
var ErrDiscard = errors.New("discard message")

// Handler обрабатывает тело сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает потребителя очереди, обрабатывая не более
// workers сообщений одновременно. Возвращается сразу; работа идёт до отмены ctx
// или закрытия канала доставки. Возвращённый канал закрывается, когда приём
// остановлен и все начатые обработчики завершились, после этого канал AMQP
// можно закрывать.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel,
	queueName string, workers int, handler Handler) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false, // auto-ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	return consume(ctx, log, delivery, workers, handler), nil
}

func consume(ctx context.Context, log *slog.Logger, delivery <-chan amqp.Delivery,
	workers int, handler Handler) <-chan struct{} {
	if workers < 1 {
		workers = 1
	}

	done := make(chan struct{})
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	go func() {
		defer close(done)
		defer wg.Wait()
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					// Не начатое сообщение вернётся в очередь.
					if err := d.Nack(false, true); err != nil {
						log.Error("failed to nack message", sl.Err(err))
					}
					return
				}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer wg.Done()
					defer func() { <-sem }()
					dispatch(ctx, log, d, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// dispatch вызывает обработчик и подтверждает доставку по результату:
// успех и ErrDiscard дают ack, прочие ошибки возвращают сообщение в очередь.
func dispatch(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler Handler) {
	err := handler(ctx, d.Body)
	switch {
	case err == nil:
	case errors.Is(err, ErrDiscard):
		log.Warn("message discarded", sl.Err(err))
	default:
		log.Error("failed to handle message, requeueing", sl.Err(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
