package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gearbook/internal/app/commands"
	RentalApp "gearbook/internal/app/handlers/rental"
)

func postWebhook(t *testing.T, h WebhookHandler, secret, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhooks/payments", h.PaymentEvent)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("Webhook-Secret", secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookPaymentEvent(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("dispatches checkout completion", func(t *testing.T) {
		bus := commands.NewInMemoryBus()
		var got RentalApp.ConfirmPaymentCommand
		commands.RegisterHandler(bus, RentalApp.ConfirmPaymentCommand{}.Name(),
			commands.HandlerFunc[RentalApp.ConfirmPaymentCommand, *RentalApp.ConfirmPaymentResult](
				func(_ context.Context, cmd RentalApp.ConfirmPaymentCommand) (*RentalApp.ConfirmPaymentResult, error) {
					got = cmd
					return &RentalApp.ConfirmPaymentResult{RentalID: cmd.RentalID, Status: "APPROVED"}, nil
				}))
		h := WebhookHandler{Commands: bus, Secret: "whsec_test", Logger: logger}

		rec := postWebhook(t, h, "whsec_test", `{
			"type": "checkout.session.completed",
			"data": {"rental_id": "rent-1", "session_id": "cs_1", "payment_ref": "pay-1"}
		}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "rent-1", got.RentalID)
		require.Equal(t, "pay-1", got.PaymentRef)
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		h := WebhookHandler{Commands: commands.NewInMemoryBus(), Secret: "whsec_test", Logger: logger}
		rec := postWebhook(t, h, "whsec_wrong", `{"type":"checkout.session.completed"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects all traffic when no secret is configured", func(t *testing.T) {
		h := WebhookHandler{Commands: commands.NewInMemoryBus(), Logger: logger}
		rec := postWebhook(t, h, "", `{"type":"checkout.session.completed"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("acks unknown event types", func(t *testing.T) {
		h := WebhookHandler{Commands: commands.NewInMemoryBus(), Secret: "whsec_test", Logger: logger}
		rec := postWebhook(t, h, "whsec_test", `{"type":"charge.updated"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "ignored")
	})

	t.Run("requires rental and payment references", func(t *testing.T) {
		h := WebhookHandler{Commands: commands.NewInMemoryBus(), Secret: "whsec_test", Logger: logger}
		rec := postWebhook(t, h, "whsec_test", `{"type":"checkout.session.completed","data":{}}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
