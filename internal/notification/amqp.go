package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSink publishes notifications to a durable RabbitMQ queue consumed by
// the delivery worker. Publish failures are returned to the caller; the
// sweeper logs and carries on.
type AMQPSink struct {
	channel        *amqp.Channel
	queue          string
	publishTimeout time.Duration
	logger         *slog.Logger
}

func NewAMQPSink(conn *amqp.Connection, queue string, publishTimeout time.Duration, logger *slog.Logger) (*AMQPSink, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &AMQPSink{
		channel:        ch,
		queue:          queue,
		publishTimeout: publishTimeout,
		logger:         logger,
	}, nil
}

func (s *AMQPSink) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.channel.PublishWithContext(
		publishCtx,
		"",
		s.queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	s.logger.Debug("notification published",
		"queue", s.queue,
		"target", msg.TargetEmployeeCode,
		"type", msg.Type)

	return nil
}

func (s *AMQPSink) Close() error {
	return s.channel.Close()
}
