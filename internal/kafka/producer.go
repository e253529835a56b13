package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Event types published by the monitor.
const (
	EventSignalAlert    = "SIGNAL_ALERT"
	EventPositionClosed = "POSITION_CLOSED"
)

// Event is the envelope shared by every published message.
type Event struct {
	EventType string      `json:"event_type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Producer publishes signal and position lifecycle events to a single topic,
// keyed by ticker so per-instrument ordering is preserved.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Kafka producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishSignalAlert publishes a new strong signal.
func (p *Producer) PublishSignalAlert(ctx context.Context, sig models.TradingSignal) error {
	return p.publish(ctx, sig.Ticker, Event{
		EventType: EventSignalAlert,
		Source:    "market-sentinel",
		Timestamp: time.Now(),
		Data:      sig,
	})
}

// PublishPositionClosed publishes a position closure.
func (p *Producer) PublishPositionClosed(ctx context.Context, pos *models.Position) error {
	return p.publish(ctx, pos.Ticker, Event{
		EventType: EventPositionClosed,
		Source:    "market-sentinel",
		Timestamp: time.Now(),
		Data:      pos,
	})
}

func (p *Producer) publish(ctx context.Context, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.EventType, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}

	log.Printf("Published %s event for %s", event.EventType, key)
	return nil
}
