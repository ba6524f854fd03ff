package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeOrders is the topic exchange kitchen consumers bind against, with
// keys of the form kitchen.<outlet_id>.<order_type>.
const ExchangeOrders = "orders_topic"

// AMQPEmitter publishes events as persistent JSON messages to a RabbitMQ
// topic exchange.
type AMQPEmitter struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects to the broker and declares the orders exchange.
func DialAMQP(url string) (*AMQPEmitter, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(ExchangeOrders, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPEmitter{conn: conn, ch: ch}, nil
}

func (e *AMQPEmitter) Emit(ctx context.Context, ev Event) error {
	body, err := json.Marshal(envelope{
		Event:     ev.Name(),
		EmittedAt: time.Now().UTC(),
		Payload:   ev,
	})
	if err != nil {
		return err
	}
	return e.ch.PublishWithContext(ctx, ExchangeOrders, ev.Key(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

func (e *AMQPEmitter) Close() {
	if e == nil {
		return
	}
	if e.ch != nil {
		_ = e.ch.Close()
	}
	if e.conn != nil {
		_ = e.conn.Close()
	}
}
