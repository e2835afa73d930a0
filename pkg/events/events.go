package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderPlaced        = "order_placed"
	OrderStatusChanged = "order_status_changed"
	OrdersCleared      = "orders_cleared"
)

var ErrUnknownType = errors.New("unknown event type")

type OrderItem struct {
	MenuItemID  string   `json:"menu_item_id"`
	ItemName    string   `json:"item_name"`
	VariantName string   `json:"variant_name,omitempty"`
	AddonNames  []string `json:"addon_names,omitempty"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
}

// OrderSnapshot is the full state of one order after the change.
type OrderSnapshot struct {
	ID          string      `json:"id"`
	TableNumber *int        `json:"table_number,omitempty"`
	DeviceID    string      `json:"device_id"`
	Status      string      `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Note        string      `json:"note,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items,omitempty"`
}

// Event is one entry of the orders topic. OrdersCleared events carry the
// scope (device or table) and the removed ids instead of a snapshot.
type Event struct {
	Type         string         `json:"type"`
	RestaurantID string         `json:"restaurant_id"`
	TableNumber  *int           `json:"table_number,omitempty"`
	DeviceID     string         `json:"device_id,omitempty"`
	OrderIDs     []string       `json:"order_ids,omitempty"`
	Order        *OrderSnapshot `json:"order,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

func (e Event) Validate() error {
	switch e.Type {
	case OrderPlaced, OrderStatusChanged:
		if e.Order == nil {
			return fmt.Errorf("%s event without order", e.Type)
		}
	case OrdersCleared:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	if e.RestaurantID == "" {
		return errors.New("event without restaurant id")
	}
	return nil
}

func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, e.Validate()
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// Publish keys messages by restaurant so one restaurant's events stay ordered
// within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.RestaurantID),
		Value: payload,
	})
}

var _ Publisher = (*KafkaPublisher)(nil)
