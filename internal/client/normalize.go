package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// rawLineItem accepts every item shape the storefront has produced: the
// canonical one, flat legacy fields and a nested product object.
type rawLineItem struct {
	ProductID  string      `json:"productId"`
	ProductID2 string      `json:"product_id"`
	ID         string      `json:"id"`
	MongoID    string      `json:"_id"`
	Name       string      `json:"name"`
	Color      string      `json:"color"`
	Size       string      `json:"size"`
	Quantity   flexNumber  `json:"quantity"`
	Qty        flexNumber  `json:"qty"`
	UnitPrice  flexNumber  `json:"unitPrice"`
	Price      flexNumber  `json:"price"`
	ImageURL   string      `json:"imageUrl"`
	Image      string      `json:"image"`
	WeightKg   flexNumber  `json:"weightKg"`
	Product    *rawProduct `json:"product"`
}

type rawProduct struct {
	ID       string     `json:"id"`
	MongoID  string     `json:"_id"`
	Name     string     `json:"name"`
	Price    flexNumber `json:"price"`
	Images   []string   `json:"images"`
	WeightKg flexNumber `json:"weightKg"`
}

// flexNumber decodes a JSON number, a numeric string or null
type flexNumber struct {
	value decimal.Decimal
	set   bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(unq)
		if s == "" {
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	f.value, f.set = d, true
	return nil
}

// NormalizeLineItem converts any known item shape into the canonical
// LineItem. Prices are rounded to 2 places and quantity must be at least 1.
func NormalizeLineItem(raw json.RawMessage) (valueobject.LineItem, error) {
	var r rawLineItem
	if err := json.Unmarshal(raw, &r); err != nil {
		return valueobject.LineItem{}, shared.NewValidationError("Unreadable line item", "item")
	}

	item := valueobject.LineItem{
		Name:     strings.TrimSpace(r.Name),
		Color:    strings.TrimSpace(r.Color),
		Size:     strings.TrimSpace(r.Size),
		ImageURL: firstNonEmpty(r.ImageURL, r.Image),
	}

	idText := firstNonEmpty(r.ProductID, r.ProductID2)
	price := firstSet(r.UnitPrice, r.Price)
	weight := r.WeightKg
	if p := r.Product; p != nil {
		idText = firstNonEmpty(idText, p.ID, p.MongoID)
		if item.Name == "" {
			item.Name = strings.TrimSpace(p.Name)
		}
		price = firstSet(price, p.Price)
		if item.ImageURL == "" && len(p.Images) > 0 {
			item.ImageURL = p.Images[0]
		}
		weight = firstSet(weight, p.WeightKg)
	}
	idText = firstNonEmpty(idText, r.ID, r.MongoID)

	id, err := uuid.Parse(idText)
	if err != nil {
		return valueobject.LineItem{}, shared.NewValidationError("Line item has no valid product id", "productId")
	}
	item.ProductID = id

	qty := firstSet(r.Quantity, r.Qty)
	if !qty.set {
		item.Quantity = 1
	} else {
		item.Quantity = int(qty.value.IntPart())
	}
	if item.Quantity < 1 {
		return valueobject.LineItem{}, shared.NewValidationError("Quantity must be at least 1", "quantity")
	}

	if price.value.IsNegative() {
		return valueobject.LineItem{}, shared.NewValidationError("Price cannot be negative", "unitPrice")
	}
	item.UnitPrice = valueobject.RoundMoney(price.value)
	if weight.value.IsPositive() {
		item.WeightKg = weight.value
	}
	return item, nil
}

// NormalizeLineItems normalizes a JSON array of items
func NormalizeLineItems(raw json.RawMessage) ([]valueobject.LineItem, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, shared.NewValidationError("Items must be a list", "items")
	}
	items := make([]valueobject.LineItem, 0, len(parts))
	for _, p := range parts {
		item, err := NormalizeLineItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstSet(values ...flexNumber) flexNumber {
	for _, v := range values {
		if v.set {
			return v
		}
	}
	return flexNumber{}
}
