// Package queue contains the background consumer that listens to the
// listing.changed queue and appends an audit line per event to
// logs/listing.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartListingConsumer connects to RabbitMQ, declares the listing.changed
// queue (durable) and consumes it until ctx is cancelled.  Each message is
// appended to <logDir>/listing.log.  The function runs a reconnect loop
// with exponential backoff and logs processing errors while rejecting the
// offending message so the server keeps running.
func StartListingConsumer(ctx context.Context, url, logDir string) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("listing-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, logDir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("listing-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-t.C:
        return true
    case <-ctx.Done():
        return false
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("listing-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(ListingQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(ListingQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(logDir, d.Body); err != nil {
                log.Printf("listing-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(logDir string, body []byte) error {
    var ev ListingChangedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Kind == "" {
        return errors.New("event without kind")
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "listing.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev ListingChangedEvent) string {
    entity := ev.EntityID
    if entity == "" {
        entity = "-"
    }
    line := fmt.Sprintf("[%s] Listing changed | kind=%s | collection=%s | id=%s",
        ev.ChangedAt, ev.Kind, ev.Collection, entity)
    if ev.ApartmentID != "" {
        line += " | apartment_id=" + ev.ApartmentID
    }
    return line + fmt.Sprintf(" | apartments=%d | sale_apartments=%d\n", ev.Apartments, ev.SaleApartments)
}
