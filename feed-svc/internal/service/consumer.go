package service

import (
	"context"
	"errors"
	"time"

	"qrmenu/pkg/events"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	Reader MessageReader
	Store  PopularityStore
	Hub    Broadcaster
	log    *zap.SugaredLogger
}

func NewConsumer(reader MessageReader, store PopularityStore, hub Broadcaster, log *zap.SugaredLogger) *Consumer {
	return &Consumer{
		Reader: reader,
		Store:  store,
		Hub:    hub,
		log:    log,
	}
}

// Run reads the orders topic until ctx is done. Offsets are committed after
// each message is handled, so a crash replays at most the message in flight.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Infow("order event consumer started")
	for {
		msg, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.log.Infow("order event consumer stopped")
				return nil
			}
			c.log.Errorw("failed to read message", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		c.Handle(ctx, msg)

		if err := c.Reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Warnw("failed to commit offset", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// Handle applies one message. Malformed events are logged and skipped.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) {
	e, err := events.Decode(msg.Value)
	if err != nil {
		c.log.Warnw("skipping malformed event", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}

	if e.Type == events.OrderPlaced {
		at := e.Order.CreatedAt
		if at.IsZero() {
			at = e.Timestamp
		}
		if err := c.Store.RecordOrder(ctx, e.RestaurantID, at, e.Order.Items); err != nil {
			c.log.Errorw("failed to update popularity", "restaurant_id", e.RestaurantID, "order_id", e.Order.ID, "error", err)
		}
	}

	c.Hub.Broadcast(e)
	c.log.Debugw("event processed", "type", e.Type, "restaurant_id", e.RestaurantID)
}
