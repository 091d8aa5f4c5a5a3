package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agent-chatbot-be/internal/config"
	"agent-chatbot-be/pkg/events"
	"agent-chatbot-be/pkg/nats"
)

// Tails knowledge events off the NATS bus. Handy for checking that
// invalidation and reindex broadcasts actually reach downstream consumers.
func main() {
	subject := flag.String("subject", "knowledge.>", "subject pattern to tail")
	durable := flag.String("durable", "events-tail", "durable consumer name")
	flag.Parse()

	cfg := config.Load()

	subscriber, err := nats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer subscriber.Close()

	err = subscriber.Subscribe(*subject, *durable, func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		log.Printf("[%s] %s", event.EventType(), payload)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")
}
