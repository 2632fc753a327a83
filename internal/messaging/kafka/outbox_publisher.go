package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в Kafka. Если topic
// не задан явно, он выбирается по типу агрегата.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer) domain.OutboxPublisher {
	return &OutboxTopicPublisher{producer: producer}
}

// NewTopicPublisher создаёт паблишер с фиксированным topic,
// например для dead letter queue.
func NewTopicPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	envelope := struct {
		ID            string          `json:"id"`
		AggregateType string          `json:"aggregate_type"`
		AggregateID   string          `json:"aggregate_id"`
		EventType     string          `json:"event_type"`
		Payload       json.RawMessage `json:"payload"`
		PublishedAt   time.Time       `json:"published_at"`
	}{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}

	topic := p.topic
	if topic == "" {
		topic = topicForAggregate(event.AggregateType)
	}

	return p.producer.PublishEvent(topic, key, envelope)
}

func topicForAggregate(aggregateType string) string {
	switch aggregateType {
	case AggregateCustomer:
		return TopicCustomerEvents
	default:
		return TopicOrderEvents
	}
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
