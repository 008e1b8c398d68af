package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSink fans booking events out to a topic exchange with routing key
// "booking.<kind>".
type AMQPSink struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPSink{conn: conn, ch: ch, exchange: exchange}, nil
}

func (a *AMQPSink) Name() string { return "amqp" }

func (a *AMQPSink) Send(ctx context.Context, ev Event) error {
	key, msg, err := publishing(ev)
	if err != nil {
		return err
	}
	return a.ch.PublishWithContext(ctx, a.exchange, key, false, false, msg)
}

// publishing builds the routing key and persistent JSON message for ev.
func publishing(ev Event) (string, amqp.Publishing, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return "booking." + string(ev.Kind), amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.RequestID,
		Timestamp:    ev.SentAt,
		Body:         b,
	}, nil
}

func (a *AMQPSink) Close() error {
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
