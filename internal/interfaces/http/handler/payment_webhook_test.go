package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const webhookPayload = `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"SF-1"}}}`

func postWebhook(h *PaymentWebhookHandler) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/payments/cashfree/webhook", h.Cashfree)
	req := httptest.NewRequest(http.MethodPost, "/payments/cashfree/webhook", bytes.NewBufferString(webhookPayload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(WebhookTimestampHeader, "1760000000")
	req.Header.Set(WebhookSignatureHeader, "c2lnbmF0dXJl")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentWebhookHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantOutcome string
	}{
		{"accepted", nil, http.StatusOK, "accepted"},
		{"bad signature", fmt.Errorf("verify: %w", payment.ErrGatewayInvalidCallback), http.StatusUnauthorized, "rejected"},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := new(MockWebhookProcessor)
			recorder := new(MockWebhookRecorder)
			processor.On("HandleWebhook", mock.Anything, []byte(webhookPayload), "1760000000", "c2lnbmF0dXJl").Return(tt.err)
			recorder.On("RecordWebhook", mock.Anything, tt.wantOutcome).Return()

			w := postWebhook(NewPaymentWebhookHandler(processor, recorder))

			assert.Equal(t, tt.wantStatus, w.Code)
			processor.AssertExpectations(t)
			recorder.AssertExpectations(t)
		})
	}
}

func TestPaymentWebhookHandler_NilRecorder(t *testing.T) {
	processor := new(MockWebhookProcessor)
	processor.On("HandleWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := postWebhook(NewPaymentWebhookHandler(processor, nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
