// Package mocks holds testify mocks for the feed-svc consumer dependencies.
package mocks

import (
	"context"
	"time"

	"qrmenu/pkg/events"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type PopularityStore struct {
	mock.Mock
}

func (_m *PopularityStore) RecordOrder(ctx context.Context, restaurantID string, at time.Time, items []events.OrderItem) error {
	ret := _m.Called(ctx, restaurantID, at, items)
	return ret.Error(0)
}

type Broadcaster struct {
	mock.Mock
}

func (_m *Broadcaster) Broadcast(e events.Event) {
	_m.Called(e)
}

type MessageReader struct {
	mock.Mock
}

func (_m *MessageReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(kafka.Message), ret.Error(1)
}

func (_m *MessageReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	ret := _m.Called(ctx, msgs)
	return ret.Error(0)
}
