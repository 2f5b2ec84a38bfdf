// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the
// main request flow.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/property-listing/internal/queue"
    "github.com/iliyamo/property-listing/internal/store"
)

// EventPublisher sends listing change events somewhere.
type EventPublisher interface {
    PublishListingChanged(ctx context.Context, event q.ListingChangedEvent) error
}

// Publisher dials the broker for every publish.  Listing mutations are
// admin-driven and rare, so a long-lived channel is not worth the
// reconnect bookkeeping.
type Publisher struct {
    URL string
}

// NewPublisher returns a publisher for the AMQP url.
func NewPublisher(url string) *Publisher {
    return &Publisher{URL: url}
}

// PublishListingChanged publishes event to the "listing.changed" queue as
// a persistent message.  It never panics; any error is logged and returned.
func (p *Publisher) PublishListingChanged(ctx context.Context, event q.ListingChangedEvent) error {
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
        q.ListingQueueName, // name
        true,               // durable
        false,              // autoDelete
        false,              // exclusive
        false,              // noWait
        nil,                // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         event.Kind,
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx, "", q.ListingQueueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// EventMiddleware publishes a ListingChangedEvent for every accepted
// listing mutation.  Publishing happens on its own goroutine with a
// bounded timeout so a slow or absent broker never stalls a dispatch.
func EventMiddleware(pub EventPublisher, now func() time.Time) store.Middleware {
    if now == nil {
        now = time.Now
    }
    return func(_ context.Context, c store.Commit) {
        ev, ok := q.NewListingChangedEvent(c, now())
        if !ok {
            return
        }
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer cancel()
            _ = pub.PublishListingChanged(ctx, ev)
        }()
    }
}
