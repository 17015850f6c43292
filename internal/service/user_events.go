// Package service publishes domain events to RabbitMQ. Publishing is best
// effort: callers log failures and carry on with the request.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/metrics"
	q "github.com/iliyamo/movie-catalog/internal/queue"
)

// UserEventPublisher is what handlers depend on.
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, ev q.UserLifecycleEvent) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishUserEvent(context.Context, q.UserLifecycleEvent) error { return nil }

// RabbitPublisher dials the broker for each event. Lifecycle events are rare
// (user creation and activation changes), so no connection is held open.
// Dialing, the handshake and the publish all share the caller's deadline.
type RabbitPublisher struct {
	URL string
	Log *zap.Logger
}

func NewRabbitPublisher(url string, log *zap.Logger) *RabbitPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RabbitPublisher{URL: url, Log: log}
}

// PublishUserEvent sends ev to the user.lifecycle queue as a persistent
// message. Any error is logged and returned.
func (p *RabbitPublisher) PublishUserEvent(ctx context.Context, ev q.UserLifecycleEvent) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			p.Log.Warn("rabbitmq: publish user event failed", zap.String("type", ev.Type), zap.Uint64("user_id", ev.UserID), zap.Error(err))
		}
		metrics.UserEventsPublished.WithLabelValues(ev.Type, result).Inc()
	}()

	timeout, err := dialTimeout(ctx)
	if err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(timeout)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.UserEventsQueue, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                // default exchange
		q.UserEventsQueue, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         ev.Type,
			Body:         body,
		},
	)
}

// defaultDialTimeout bounds connection setup when ctx carries no deadline.
const defaultDialTimeout = 2 * time.Second

// dialTimeout derives the TCP and AMQP handshake budget from ctx so a hung
// broker cannot hold a request longer than its publish deadline.
func dialTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}

// NewUserEvent stamps an event with the current UTC time.
func NewUserEvent(typ string, userID uint64, userName, email string) q.UserLifecycleEvent {
	return q.UserLifecycleEvent{
		Type:       typ,
		UserID:     userID,
		UserName:   userName,
		Email:      email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
