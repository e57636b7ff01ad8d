package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ErrProductUnavailable is returned for inactive products on the storefront
var ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Variant is one purchasable color/size combination with its own stock
type Variant struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Matches reports whether the variant is the given color and size (case-insensitive)
func (v Variant) Matches(color, size string) bool {
	return strings.EqualFold(v.Color, color) && strings.EqualFold(v.Size, size)
}

// Product is the aggregate root of the catalog
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	WeightKg    decimal.Decimal // zero when unknown
	Images      []string
	Variants    []Variant
	Status      ProductStatus
}

// NewProduct creates a new active product
func NewProduct(name, category string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Category:          strings.TrimSpace(category),
		Price:             price.Round(2),
		WeightKg:          decimal.Zero,
		Images:            []string{},
		Variants:          []Variant{},
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive fields and price
func (p *Product) Update(name, description, category string, price, weightKg decimal.Decimal) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	if weightKg.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.Price = price.Round(2)
	p.WeightKg = weightKg
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetVariants replaces the variant list. Duplicate color/size pairs are rejected.
func (p *Product) SetVariants(variants []Variant) error {
	seen := make(map[string]struct{}, len(variants))
	cleaned := make([]Variant, 0, len(variants))
	for _, v := range variants {
		v.Color = strings.TrimSpace(v.Color)
		v.Size = strings.TrimSpace(v.Size)
		if v.Stock < 0 {
			return shared.NewDomainError("INVALID_STOCK", "Variant stock cannot be negative")
		}
		key := strings.ToLower(v.Color) + "|" + strings.ToLower(v.Size)
		if _, dup := seen[key]; dup {
			return shared.NewDomainError("DUPLICATE_VARIANT", "Duplicate variant "+v.Color+"/"+v.Size)
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, v)
	}

	p.Variants = cleaned
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Variant finds the variant for color and size
func (p *Product) Variant(color, size string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Matches(color, size) {
			return v, true
		}
	}
	return Variant{}, false
}

// AvailableStock returns the stock of a variant, or 0 if it does not exist
// or the product is not sellable.
func (p *Product) AvailableStock(color, size string) int {
	if !p.IsActive() {
		return 0
	}
	v, ok := p.Variant(color, size)
	if !ok {
		return 0
	}
	return v.Stock
}

// AdjustStock changes a variant's stock by delta. Stock never goes below zero.
func (p *Product) AdjustStock(color, size string, delta int) error {
	for i := range p.Variants {
		if !p.Variants[i].Matches(color, size) {
			continue
		}
		next := p.Variants[i].Stock + delta
		if next < 0 {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Only %d left for %s (%s/%s)", p.Variants[i].Stock, p.Name, color, size))
		}
		p.Variants[i].Stock = next
		p.UpdatedAt = time.Now()
		p.IncrementVersion()
		p.AddDomainEvent(NewProductStockChangedEvent(p, p.Variants[i], delta))
		return nil
	}
	return shared.NewDomainError("VARIANT_NOT_FOUND", "Variant "+color+"/"+size+" does not exist")
}

// AddImage appends an image URL
func (p *Product) AddImage(url string) {
	p.Images = append(p.Images, url)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// RemoveImage removes an image URL; missing URLs are ignored
func (p *Product) RemoveImage(url string) {
	out := p.Images[:0]
	for _, img := range p.Images {
		if img != url {
			out = append(out, img)
		}
	}
	p.Images = out
	p.UpdatedAt = time.Now()
}

// PrimaryImage returns the first image or empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, ProductStatusActive, ProductStatusInactive))
	return nil
}

// Activate makes the product sellable again
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, ProductStatusInactive, ProductStatusActive))
	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// TotalStock sums stock over all variants
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
