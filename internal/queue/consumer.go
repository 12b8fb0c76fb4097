package queue

// The activity consumer listens on the ticket activity queue and appends one
// line per event to a log file.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartActivityConsumer connects to the broker at url, declares queueName
// (durable) and appends every event to logPath.  It runs a reconnect loop
// with exponential backoff and never returns; call it in its own goroutine.
// Messages that cannot be handled are rejected without requeueing so that a
// poison message cannot stall the queue.
func StartActivityConsumer(url, queueName, logPath string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(conn, queueName, logPath)
		_ = conn.Close()
		log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection, queueName, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("activity-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleMessage(d.Body, logPath); err != nil {
			log.Printf("activity-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event and appends its log line to logPath,
// creating the directory when needed.
func HandleMessage(body []byte, logPath string) error {
	var ev TicketActivityEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Kind == "" {
		return errors.New("event without kind")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatActivity(ev) + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatActivity renders ev as a single human-friendly line.  Empty fields
// are left out.
func FormatActivity(ev TicketActivityEvent) string {
	line := fmt.Sprintf("[%s] Ticket %s | actor=%s", ev.OccurredAt, ev.Kind, ev.ActorRole)
	if ev.ActorName != "" {
		line += fmt.Sprintf(" (%q)", ev.ActorName)
	}
	for _, kv := range []struct{ k, v string }{
		{"concert_id", ev.ConcertID},
		{"ticket_id", ev.TicketID},
		{"seat", ev.SeatNumber},
		{"buyer", ev.BuyerEmail},
		{"payment", ev.PaymentMethod},
		{"reason", fmt.Sprintf("%q", ev.Reason)},
	} {
		if kv.v != "" && kv.v != `""` {
			line += " | " + kv.k + "=" + kv.v
		}
	}
	if ev.Quantity > 0 {
		line += fmt.Sprintf(" | quantity=%d", ev.Quantity)
	}
	return line + " | event_id=" + ev.EventID
}
