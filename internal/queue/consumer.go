package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/online-course-platform/internal/mailer"
)

// StartNotificationConsumer connects to RabbitMQ, declares the
// durable notification.email queue, and delivers each event as email
// through the given sender. It runs a reconnect loop with exponential
// backoff and keeps running across broker restarts; processing errors
// are logged and the offending message is rejected without requeue so
// a poison message cannot wedge the worker.
func StartNotificationConsumer(sender mailer.Sender) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("notification-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, sender); err != nil {
			log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, sender mailer.Sender) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("notification-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(notificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(notificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, sender); err != nil {
			log.Printf("notification-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, sender mailer.Sender) error {
	var ev EmailNotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RecipientEmail == "" {
		return fmt.Errorf("event %s has no recipient", ev.Kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch ev.Kind {
	case EventAnswerAdded:
		return sender.SendAnswerNotification(ctx, ev.RecipientEmail, ev.RecipientName, ev.CourseName, ev.Question)
	case EventReviewAdded:
		// Review events notify the platform inbox; reuse the answer
		// template body until a dedicated one exists.
		return sender.SendAnswerNotification(ctx, ev.RecipientEmail, ev.RecipientName, ev.CourseName,
			fmt.Sprintf("new %.1f-star review", ev.Rating))
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}
