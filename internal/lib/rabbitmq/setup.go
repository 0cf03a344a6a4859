package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange: direct exchange, через который API и планировщик публикуют уведомления.
const Exchange = "notifications"

// Ключи маршрутизации событий.
const (
	RoutingEmailVerification    = "email.verification"
	RoutingOrderConfirmation    = "order.confirmation"
	RoutingSubscriptionExpiring = "subscription.expiring"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди, которые читает сервис отправки писем.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "email.verification.queue", RoutingKey: RoutingEmailVerification},
		{QueueName: "order.confirmation.queue", RoutingKey: RoutingOrderConfirmation},
		{QueueName: "subscription.expiring.queue", RoutingKey: RoutingSubscriptionExpiring},
	}
}

// SetupChannel открывает канал, объявляет exchange и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	if err = ch.ExchangeDeclare(Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, Exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
