package mq

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	contracts "habitledger/contracts/mq"
)

const (
	ExchangeName = "events"

	connectionName = "habitledger"
	heartbeat      = 10 * time.Second
)

// Binding 把一个持久队列绑定到 events 交换机上的某个 routing key
type Binding struct {
	Queue      string
	RoutingKey string
}

func (b Binding) validate() error {
	if b.Queue == "" || b.RoutingKey == "" {
		return fmt.Errorf("binding needs queue and routing key: %+v", b)
	}
	return nil
}

// CompletionBindings binds queue to toggle events; an empty queue binds nothing.
func CompletionBindings(queue string) []Binding {
	if queue == "" {
		return nil
	}
	return []Binding{{Queue: queue, RoutingKey: contracts.RoutingKeyCompletionToggled}}
}

// NewConnection dials RabbitMQ with a named connection so the broker UI
// shows which service holds it.
func NewConnection(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(url, amqp091.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: amqp091.Table{"connection_name": connectionName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// DeclareTopology declares the durable topic exchange, then one durable
// queue per binding. Events published before any consumer exists wait in
// the bound queues instead of being dropped by the exchange.
func DeclareTopology(ch *amqp091.Channel, bindings ...Binding) error {
	if err := ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeName, err)
	}

	for _, b := range bindings {
		if err := b.validate(); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}
		if err := ch.QueueBind(b.Queue, b.RoutingKey, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.Queue, b.RoutingKey, err)
		}
	}
	return nil
}
