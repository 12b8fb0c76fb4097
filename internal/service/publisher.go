// Package service publishes console domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore them without interrupting the
// user's flow.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/philharmonic-console/internal/ids"
	q "github.com/iliyamo/philharmonic-console/internal/queue"
)

// ErrDisabled is returned by a nil Publisher.
var ErrDisabled = errors.New("publisher: disabled")

// Publisher sends ticket activity events to one durable queue.  The broker
// connection is opened on first use and reopened after a failure.  A nil
// *Publisher is valid and publishes nothing.
type Publisher struct {
	url   string
	queue string
	now   func() time.Time

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for queueName at url, or nil when url is
// empty.
func NewPublisher(url, queueName string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, queue: queueName, now: time.Now}
}

// Publish stamps ev with an id and a timestamp when they are missing and
// sends it as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev q.TicketActivityEvent) error {
	if p == nil {
		return ErrDisabled
	}
	if ev.EventID == "" {
		ev.EventID = ids.Event()
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = p.now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		MessageId:    ev.EventID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		p.reset()
		return err
	}
	return nil
}

// channel returns the open channel, dialing and declaring the queue when
// needed.  p.mu must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.reset()
	p.mu.Unlock()
}
