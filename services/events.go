package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

const (
	EventPeriodCreated        = "calendar.period_created"
	EventPeriodDeleted        = "calendar.period_deleted"
	EventMealPricesRecomputed = "room.meal_prices_recomputed"
	EventApplicationCreated   = "application.created"
	EventApplicationCancelled = "application.cancelled"
)

type Event struct {
	Type       string    `json:"type"`
	RoomID     uint      `json:"room_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// EventPublisher sends pricing events to Kafka keyed by room id. A nil
// publisher, or one without a producer, drops events.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *slog.Logger
}

func NewEventPublisher(producer sarama.SyncProducer, topic string, log *slog.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic, log: log}
}

// Publish is best effort: failures are logged and never surface to the caller.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, roomID uint, payload any) {
	if p == nil || p.producer == nil {
		return
	}
	body, err := json.Marshal(Event{Type: eventType, RoomID: roomID, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		p.log.WarnContext(ctx, "event encode failed", "type", eventType, "error", err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(roomID), 10)),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(eventType)},
		},
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		p.log.WarnContext(ctx, "event publish failed", "type", eventType, "room_id", roomID, "error", err)
	}
}

func (p *EventPublisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
