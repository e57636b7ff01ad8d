package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel maps the products table
type ProductModel struct {
	AggregateModel
	Name        string                  `gorm:"type:varchar(200);not null"`
	Description string                  `gorm:"type:text;not null;default:''"`
	Category    string                  `gorm:"type:varchar(100);not null;default:'';index"`
	Price       decimal.Decimal         `gorm:"type:numeric(12,2);not null"`
	WeightKg    decimal.Decimal         `gorm:"type:numeric(8,3);not null;default:0"`
	Images      JSON[[]string]          `gorm:"type:jsonb;not null"`
	Variants    JSON[[]catalog.Variant] `gorm:"type:jsonb;not null"`
	Status      catalog.ProductStatus   `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the row to a Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		Price:             m.Price,
		WeightKg:          m.WeightKg,
		Images:            m.Images.V,
		Variants:          m.Variants.V,
		Status:            m.Status,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Variants == nil {
		p.Variants = []catalog.Variant{}
	}
	return p
}

// ProductModelFromDomain builds the row for a Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		WeightKg:    p.WeightKg,
		Images:      NewJSON(nonNil(p.Images)),
		Variants:    NewJSON(nonNil(p.Variants)),
		Status:      p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
