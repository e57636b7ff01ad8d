package payment

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type cashfreeOrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type cashfreeCreateOrderRequest struct {
	OrderID         string             `json:"order_id"`
	OrderAmount     float64            `json:"order_amount"`
	OrderCurrency   string             `json:"order_currency"`
	CustomerDetails cashfreeCustomer   `json:"customer_details"`
	OrderMeta       *cashfreeOrderMeta `json:"order_meta,omitempty"`
	OrderExpiryTime string             `json:"order_expiry_time,omitempty"`
	OrderTags       map[string]string  `json:"order_tags,omitempty"`
}

type cashfreeOrder struct {
	CFOrderID        string          `json:"cf_order_id"`
	OrderID          string          `json:"order_id"`
	OrderAmount      decimal.Decimal `json:"order_amount"`
	OrderCurrency    string          `json:"order_currency"`
	OrderStatus      string          `json:"order_status"`
	PaymentSessionID string          `json:"payment_session_id"`
	OrderExpiryTime  string          `json:"order_expiry_time"`
}

type cashfreeErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

type cashfreeWebhook struct {
	Type      string `json:"type"`
	EventTime string `json:"event_time"`
	Data      struct {
		Order struct {
			OrderID     string          `json:"order_id"`
			OrderAmount decimal.Decimal `json:"order_amount"`
		} `json:"order"`
		Payment struct {
			CFPaymentID   cashfreeID      `json:"cf_payment_id"`
			PaymentStatus string          `json:"payment_status"`
			PaymentAmount decimal.Decimal `json:"payment_amount"`
			PaymentTime   string          `json:"payment_time"`
		} `json:"payment"`
	} `json:"data"`
}

// cashfreeID keeps a gateway id exactly as sent. Payment ids arrive as JSON
// numbers or strings and outgrow float64 precision.
type cashfreeID string

func (id *cashfreeID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = cashfreeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = cashfreeID(n.String())
	return nil
}
