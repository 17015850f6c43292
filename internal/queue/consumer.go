package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	consumerPrefetch  = 50
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// EventLog appends one line per user lifecycle event to a file. The parent
// directory is created on first write.
type EventLog struct {
	Path string

	mu sync.Mutex
}

// Append validates a raw event body and writes it. Bodies that do not decode
// or carry no type are rejected without touching the file.
func (l *EventLog) Append(body []byte) error {
	var ev UserLifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "decode user event")
	}
	if ev.Type == "" {
		return errors.New("user event has no type")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(l.Path))
	}
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open event log")
	}
	defer f.Close()

	_, err = f.WriteString(formatLine(ev))
	return errors.Wrap(err, "write event log")
}

func formatLine(ev UserLifecycleEvent) string {
	return fmt.Sprintf("[%s] %s | user_id=%d | user_name=%q | email=%q\n",
		ev.OccurredAt, ev.Type, ev.UserID, ev.UserName, ev.Email)
}

// UserEventConsumer drains the user.lifecycle queue into an EventLog.
type UserEventConsumer struct {
	URL  string
	Sink *EventLog
	Log  *zap.Logger
}

func NewUserEventConsumer(url, logPath string, log *zap.Logger) *UserEventConsumer {
	return &UserEventConsumer{URL: url, Sink: &EventLog{Path: logPath}, Log: log}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff
// whenever the broker connection drops. It always returns ctx.Err().
func (c *UserEventConsumer) Run(ctx context.Context) error {
	delay := minReconnectDelay
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("user event consumer: broker unreachable", zap.Error(err), zap.Duration("retry_in", delay))
			wait(ctx, delay)
			delay = min(2*delay, maxReconnectDelay)
			continue
		}
		delay = minReconnectDelay

		err = c.drain(ctx, conn)
		_ = conn.Close()
		if ctx.Err() == nil {
			c.Log.Warn("user event consumer: reconnecting", zap.Error(err))
			wait(ctx, 2*time.Second)
		}
	}
	return ctx.Err()
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// drain consumes deliveries on one connection until it closes. Messages that
// cannot be logged are rejected without requeue so a poison message cannot
// spin the consumer.
func (c *UserEventConsumer) drain(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		c.Log.Warn("user event consumer: qos not applied", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(UserEventsQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}
	deliveries, err := ch.ConsumeWithContext(ctx, UserEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "start consuming")
	}

	for d := range deliveries {
		if err := c.Sink.Append(d.Body); err != nil {
			c.Log.Error("user event consumer: event dropped", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("delivery channel closed")
}
