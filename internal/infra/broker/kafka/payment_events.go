package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	"gearbook/internal/app/commands"
	RentalApp "gearbook/internal/app/handlers/rental"
	domainrental "gearbook/internal/domain/rental"
)

// Dedup tracks processed event ids so redeliveries become no-ops.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// PaymentEventsHandler consumes the payment processor's broker feed and
// turns completed checkouts into payment confirmations.
type PaymentEventsHandler struct {
	Commands commands.Bus
	Inbox    Dedup
	Logger   *slog.Logger
}

type paymentCloudEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		RentalID   string `json:"rental_id"`
		SessionID  string `json:"session_id"`
		PaymentRef string `json:"payment_ref"`
	} `json:"data"`
}

func (h PaymentEventsHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt paymentCloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		// A malformed message will never parse; skip rather than block the
		// partition.
		if h.Logger != nil {
			h.Logger.Warn("dropping malformed payment event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	if evt.Type != "payment.checkout.completed.v1" {
		return nil
	}
	if h.Inbox != nil && evt.ID != "" {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	cmd := RentalApp.ConfirmPaymentCommand{
		RentalID:   evt.Data.RentalID,
		SessionID:  evt.Data.SessionID,
		PaymentRef: evt.Data.PaymentRef,
	}
	_, err := commands.Dispatch[RentalApp.ConfirmPaymentCommand, *RentalApp.ConfirmPaymentResult](ctx, h.Commands, cmd)
	if err != nil {
		// Confirmations for unknown or already-settled rentals stay dropped;
		// anything else is retried by the consumer group.
		if errors.Is(err, domainrental.ErrNotFound) || errors.Is(err, domainrental.ErrInvalidTransition) {
			if h.Logger != nil {
				h.Logger.Warn("payment event not applicable", "rental_id", evt.Data.RentalID, "error", err)
			}
			return nil
		}
		return err
	}
	return nil
}

var _ MessageHandler = PaymentEventsHandler{}
