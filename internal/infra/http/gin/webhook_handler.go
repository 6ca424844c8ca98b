package ginserver

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearbook/internal/app/commands"
	RentalApp "gearbook/internal/app/handlers/rental"
)

// WebhookHandler receives payment processor callbacks. The processor signs
// each delivery with a shared secret carried in the Webhook-Secret header.
type WebhookHandler struct {
	Commands commands.Bus
	Secret   string
	Logger   *slog.Logger
}

type paymentEvent struct {
	Type string `json:"type"`
	Data struct {
		RentalID   string `json:"rental_id"`
		SessionID  string `json:"session_id"`
		PaymentRef string `json:"payment_ref"`
	} `json:"data"`
}

func (h WebhookHandler) PaymentEvent(c *gin.Context) {
	if h.Secret == "" || !secretMatches(c.GetHeader("Webhook-Secret"), h.Secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
		return
	}
	var event paymentEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		if event.Data.RentalID == "" || event.Data.PaymentRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rental_id and payment_ref are required"})
			return
		}
		cmd := RentalApp.ConfirmPaymentCommand{
			RentalID:   event.Data.RentalID,
			SessionID:  event.Data.SessionID,
			PaymentRef: event.Data.PaymentRef,
		}
		result, err := commands.Dispatch[RentalApp.ConfirmPaymentCommand, *RentalApp.ConfirmPaymentResult](c.Request.Context(), h.Commands, cmd)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	default:
		// Unknown event types are acknowledged so the processor stops
		// redelivering them.
		if h.Logger != nil {
			h.Logger.Debug("ignoring payment event", "type", event.Type)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func secretMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

var _ WebhookHTTP = WebhookHandler{}
