package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/payment"
)

// Webhook signature headers sent by the payment gateway
const (
	WebhookTimestampHeader = "x-webhook-timestamp"
	WebhookSignatureHeader = "x-webhook-signature"
)

// WebhookProcessor verifies and applies a gateway notification
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, timestamp, signature string) error
}

// WebhookRecorder counts webhook outcomes
type WebhookRecorder interface {
	RecordWebhook(ctx context.Context, outcome string)
}

// PaymentWebhookHandler receives payment gateway callbacks
type PaymentWebhookHandler struct {
	BaseHandler
	processor WebhookProcessor
	recorder  WebhookRecorder
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler. recorder may be nil.
func NewPaymentWebhookHandler(processor WebhookProcessor, recorder WebhookRecorder) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{processor: processor, recorder: recorder}
}

// Cashfree godoc
// @ID           cashfreeWebhook
// @Summary      Payment gateway webhook
// @Description  Signature-checked payment notification. Duplicates and non-success events are acknowledged without effect.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        x-webhook-timestamp header string true "Gateway timestamp"
// @Param        x-webhook-signature header string true "Base64 HMAC-SHA256 of timestamp+body"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /payments/cashfree/webhook [post]
func (h *PaymentWebhookHandler) Cashfree(c *gin.Context) {
	ctx := c.Request.Context()
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BindError(c, err)
		return
	}

	err = h.processor.HandleWebhook(ctx, payload,
		c.GetHeader(WebhookTimestampHeader),
		c.GetHeader(WebhookSignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrGatewayInvalidCallback) {
			h.record(ctx, "rejected")
		} else {
			h.record(ctx, "failed")
		}
		h.HandleDomainError(c, err)
		return
	}

	h.record(ctx, "accepted")
	h.Success(c, gin.H{"received": true})
}

func (h *PaymentWebhookHandler) record(ctx context.Context, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordWebhook(ctx, outcome)
	}
}
