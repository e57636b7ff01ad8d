package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CartModel maps the carts table
type CartModel struct {
	AggregateModel
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Items      []CartItemModel `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel maps one cart line; Position keeps insertion order
type CartItemModel struct {
	CartID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position int       `gorm:"primaryKey;autoIncrement:false"`
	LineItemColumns
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// LineItemColumns are the columns shared by cart and order lines
type LineItemColumns struct {
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Color     string          `gorm:"type:varchar(50);not null"`
	Size      string          `gorm:"type:varchar(20);not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ImageURL  string          `gorm:"type:varchar(500);not null;default:''"`
	WeightKg  decimal.Decimal `gorm:"type:numeric(8,3);not null;default:0"`
}

func lineColumns(l valueobject.LineItem) LineItemColumns {
	return LineItemColumns{
		ProductID: l.ProductID,
		Name:      l.Name,
		Color:     l.Color,
		Size:      l.Size,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		ImageURL:  l.ImageURL,
		WeightKg:  l.WeightKg,
	}
}

func (c LineItemColumns) toLineItem() valueobject.LineItem {
	return valueobject.LineItem{
		ProductID: c.ProductID,
		Name:      c.Name,
		Color:     c.Color,
		Size:      c.Size,
		Quantity:  c.Quantity,
		UnitPrice: c.UnitPrice,
		ImageURL:  c.ImageURL,
		WeightKg:  c.WeightKg,
	}
}

// ToDomain converts the row and its lines to a Cart
func (m *CartModel) ToDomain() *cart.Cart {
	items := make([]valueobject.LineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = it.toLineItem()
	}
	return &cart.Cart{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		Items:             items,
	}
}

// CartModelFromDomain builds the row and lines for a Cart
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{CustomerID: c.CustomerID}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Items = make([]CartItemModel, len(c.Items))
	for i, it := range c.Items {
		m.Items[i] = CartItemModel{CartID: c.ID, Position: i, LineItemColumns: lineColumns(it)}
	}
	return m
}
