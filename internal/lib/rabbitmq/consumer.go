package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
)

const prefetch = 10

// ErrPermanent помечает ошибку, после которой повторная обработка бессмысленна
// (например, некорректный JSON). Такое сообщение отбрасывается без возврата в очередь.
var ErrPermanent = errors.New("permanent failure")

// Handler обрабатывает тело сообщения. Ошибка приводит к nack с возвратом в очередь,
// если она не оборачивает ErrPermanent.
type Handler func(ctx context.Context, body []byte) error

// Consumer позволяет дождаться остановки чтения очереди.
type Consumer struct {
	done chan struct{}
}

// Wait блокируется, пока чтение не прекратится и все начатые обработчики
// не вернут управление. Канал после этого можно закрывать.
func (c *Consumer) Wait() {
	<-c.done
}

// ConsumerMessage запускает потребителя очереди. Сообщения обрабатываются
// параллельно, но не более prefetch одновременно. Функция возвращается сразу,
// чтение прекращается при отмене ctx или закрытии канала.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler Handler,
	log *slog.Logger) (*Consumer, error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return startConsumer(ctx, delivery, handler, log.With(slog.String("queue", queueName))), nil
}

func startConsumer(ctx context.Context, delivery <-chan amqp.Delivery, handler Handler, log *slog.Logger) *Consumer {
	c := &Consumer{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		consume(ctx, delivery, handler, log)
	}()
	return c
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func consume(ctx context.Context, delivery <-chan amqp.Delivery, handler Handler, log *slog.Logger) {
	sem := make(chan struct{}, prefetch)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handle(ctx, &d, d.Body, handler, log)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func handle(ctx context.Context, ack acknowledger, body []byte, handler Handler, log *slog.Logger) {
	if err := handler(ctx, body); err != nil {
		log.Error("failed to handle message", sl.Err(err))
		if nackErr := ack.Nack(false, !errors.Is(err, ErrPermanent)); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
