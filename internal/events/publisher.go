package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

// OrderItemEvent is published after every persisted status change so other
// services can follow provisioning progress without polling.
type OrderItemEvent struct {
	OrderItemID string    `json:"order_item_id"`
	OrderID     string    `json:"order_id"`
	UUID        string    `json:"uuid"`
	Status      string    `json:"status"`
	StatusMsg   string    `json:"status_msg,omitempty"`
	At          time.Time `json:"at"`
}

// Publisher emits order item status events. Publishing is best effort; the
// provisioning core logs and ignores failures.
type Publisher interface {
	PublishStatus(ctx context.Context, item *models.OrderItem) error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatus(ctx context.Context, item *models.OrderItem) error {
	return nil
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *KafkaPublisher) PublishStatus(ctx context.Context, item *models.OrderItem) error {
	event := OrderItemEvent{
		OrderItemID: item.ID,
		OrderID:     item.OrderID,
		UUID:        item.UUID,
		Status:      item.Status,
		StatusMsg:   item.StatusMsg,
		At:          time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(item.ID),
		Value: value,
		Time:  event.At,
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
