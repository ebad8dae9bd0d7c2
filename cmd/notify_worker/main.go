package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-marketplace-api/config"
	"github.com/oksasatya/go-marketplace-api/pkg/events"
	"github.com/oksasatya/go-marketplace-api/pkg/mailer"
)

// Consumes listing events from RabbitMQ and sends notification emails
// through Mailgun. Runs as a separate process from the API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailSendEnabled && (cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "") {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQEventQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			var ev events.Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if err := handle(ctx, mg, cfg, ev); err != nil {
				log.Printf("handle %s: %v", ev.Type, err)
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}()

	log.Printf("notify worker consuming %q", cfg.RabbitMQEventQueue)
	<-stop
	_ = ch.Close()
	<-done
	log.Println("notify worker stopped")
}

func handle(ctx context.Context, mg *mailer.Mailgun, cfg *config.Config, ev events.Event) error {
	switch ev.Type {
	case events.UserRegistered:
		if !cfg.MailSendEnabled || ev.Email == "" {
			return nil
		}
		body := fmt.Sprintf("Hi %s,\n\nyour marketplace account is ready. Happy selling!\n", ev.Username)
		return mg.Send(ctx, ev.Email, "Welcome to the marketplace", body)
	case events.ItemCreated, events.ItemDeleted:
		// no email for listing lifecycle yet; acknowledged so the queue drains
		log.Printf("event %s item=%d user=%d", ev.Type, ev.ItemID, ev.UserID)
		return nil
	}
	log.Printf("unknown event type %q", ev.Type)
	return nil
}
