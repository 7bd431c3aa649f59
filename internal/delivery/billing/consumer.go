package billing

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/fadehouse/compensation-service/internal/domain"
	publisher "github.com/fadehouse/compensation-service/internal/infrastructure/kafka"
	"github.com/fadehouse/compensation-service/internal/usecase/commission"
)

// Consumer drains the billing topic and feeds qualifying events into the
// commission engine. The engine's idempotency guard makes redelivery safe, so
// processing failures are logged and the loop moves on.
type Consumer struct {
	subscriber        domain.SubscriberPort
	commissionUsecase commission.CommissionUsecase
	topic             string
	groupID           string
}

func NewConsumer(
	subscriber domain.SubscriberPort,
	commissionUsecase commission.CommissionUsecase,
	topic, groupID string,
) *Consumer {
	return &Consumer{
		subscriber:        subscriber,
		commissionUsecase: commissionUsecase,
		topic:             topic,
		groupID:           groupID,
	}
}

// Run blocks until the subscription channel closes or ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(c.topic, c.groupID)
	if err != nil {
		return err
	}
	slog.Info("billing consumer started", "topic", c.topic, "group_id", c.groupID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				slog.Warn("billing subscription closed", "topic", c.topic)
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg domain.Message) {
	var wire publisher.BillingEvent
	if err := json.Unmarshal(msg.Value, &wire); err != nil {
		slog.Error("malformed billing message", "key", string(msg.Key), "error", err.Error())
		return
	}

	event := &domain.QualifyingEvent{
		EventID:      wire.EventID,
		Type:         domain.BillingEventType(wire.Type),
		MemberID:     wire.MemberID,
		SponsorID:    wire.SponsorID,
		AmountBilled: wire.AmountBilled,
	}
	created, err := c.commissionUsecase.OnQualifyingEvent(ctx, event)
	if err != nil {
		slog.Error("billing event processing failed",
			"event_id", wire.EventID,
			"type", wire.Type,
			"error", err.Error())
		return
	}
	slog.Info("billing event processed",
		"event_id", wire.EventID,
		"type", wire.Type,
		"commissions_created", len(created))
}
