package service

import (
	"context"
	"time"

	"qrmenu/pkg/events"

	"github.com/segmentio/kafka-go"
)

type PopularityStore interface {
	RecordOrder(ctx context.Context, restaurantID string, at time.Time, items []events.OrderItem) error
}

// MessageReader is the part of kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Broadcaster interface {
	Broadcast(e events.Event)
}

type HubInterface interface {
	Broadcaster
	Subscribe(restaurantID string, filter Filter) (<-chan []byte, func())
	Subscribers(restaurantID string) int
}

var (
	_ MessageReader = (*kafka.Reader)(nil)
	_ HubInterface  = (*Hub)(nil)
)
