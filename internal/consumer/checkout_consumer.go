package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/webshop/cart-service/internal/repository"
)

// cartClearer is the slice of the consistency engine the consumer needs.
type cartClearer interface {
	ClearCart(ctx context.Context, ownerID int64) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CheckoutConsumer empties a cart when its owner completes checkout.
// Clearing goes through the engine so the cached entry is invalidated
// with the same ordering as any other mutation.
type CheckoutConsumer struct {
	engine cartClearer
	reader messageReader
	log    *slog.Logger
}

type checkoutEvent struct {
	OwnerID int64 `json:"owner_id"`
}

func NewCheckoutConsumer(engine cartClearer, log *slog.Logger, brokers ...string) *CheckoutConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "cart-service-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &CheckoutConsumer{engine: engine, reader: reader, log: log}
}

func (c *CheckoutConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.consumeOne(ctx)
	}
}

func (c *CheckoutConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error("closing kafka reader failed", "error", err)
	}
}

func (c *CheckoutConsumer) consumeOne(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Error("reading checkout message failed", "error", err)
		}
		return
	}

	var event checkoutEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.log.Error("parsing checkout message failed", "error", err)
		return
	}
	if event.OwnerID <= 0 {
		c.log.Error("checkout message missing owner_id", "offset", m.Offset)
		return
	}

	err = c.engine.ClearCart(ctx, event.OwnerID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		c.log.Error("clearing cart after checkout failed", "owner_id", event.OwnerID, "error", err)
		return
	}

	c.log.Info("cart cleared after checkout", "owner_id", event.OwnerID)
}
