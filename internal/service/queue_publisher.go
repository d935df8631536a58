// Package service provides the outbound edge to the message broker.
// Errors are logged and returned so callers can treat publishing as best
// effort without interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/movieon/auth-service/internal/queue"
)

// LoginEventPublisher publishes login audit events to the "auth.login"
// queue.  It satisfies session.EventPublisher.
type LoginEventPublisher struct {
	URL string // AMQP broker URL
}

// PublishLogin publishes ev to the auth.login queue.  The function never
// panics; any error is logged and returned so the caller can choose to
// ignore it.  Messages are marked persistent so they survive broker
// restarts.
func (p LoginEventPublisher) PublishLogin(ctx context.Context, ev q.LoginEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		"auth.login", // name
		true,         // durable
		false,        // autoDelete
		false,        // exclusive
		false,        // noWait
		nil,          // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",           // default exchange
		"auth.login", // routing key = queue name
		false,        // mandatory
		false,        // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
