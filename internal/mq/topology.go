package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic-обменник событий выполнения.
// Ключи маршрутизации: node.<status>, flow.<status>, chain.<status>.
const ExchangeEvents Exchange = "nodeflow.events"

// Queues — имена очередей.
const (
	QueueNodeEvents  Queue = "events.nodes"
	QueueFlowEvents  Queue = "events.flows"
	QueueChainEvents Queue = "events.chains"
)

// Шаблоны маршрутизации очередей.
const (
	RoutingPatternNodes  RoutingKey = "node.*"
	RoutingPatternFlows  RoutingKey = "flow.*"
	RoutingPatternChains RoutingKey = "chain.*"
)

// SetupTopology объявляет обменник и очереди событий.
//
// Подписчики (UI, внешние интеграции) читают очереди событий;
// сам движок их только публикует.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		bindings := []struct {
			queue   Queue
			pattern RoutingKey
		}{
			{QueueNodeEvents, RoutingPatternNodes},
			{QueueFlowEvents, RoutingPatternFlows},
			{QueueChainEvents, RoutingPatternChains},
		}

		for _, b := range bindings {
			if _, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				nil,             // arguments
			); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(
				string(b.queue),
				string(b.pattern),
				string(ExchangeEvents),
				false,
				nil,
			); err != nil {
				return fmt.Errorf("bind queue %s: %w", b.queue, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Nodeflow RabbitMQ Topology:

    nodeflow.events (topic)
    ├── events.nodes  [routing: node.*]
    ├── events.flows  [routing: flow.*]
    └── events.chains [routing: chain.*]
            Consumers: UI / external subscribers
  `
}
