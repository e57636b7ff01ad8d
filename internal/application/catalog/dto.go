package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// VariantInput is one color/size stock row in a product request
type VariantInput struct {
	Color string `json:"color" binding:"required,max=50"`
	Size  string `json:"size" binding:"required,max=20"`
	Stock int    `json:"stock" binding:"min=0"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Category    string          `json:"category" binding:"max=100"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	WeightKg    decimal.Decimal `json:"weightKg"`
	Variants    []VariantInput  `json:"variants" binding:"dive"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	WeightKg    *decimal.Decimal `json:"weightKg"`
	Variants    []VariantInput   `json:"variants" binding:"omitempty,dive"`
	Active      *bool            `json:"active"`
}

// AdjustStockRequest changes one variant's stock by Delta
type AdjustStockRequest struct {
	Color string `json:"color" binding:"required"`
	Size  string `json:"size" binding:"required"`
	Delta int    `json:"delta" binding:"required"`
}

// ProductListFilter is the query of the product listing
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy" binding:"omitempty,oneof=name price created_at updated_at"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// VariantResponse is a variant in API responses
type VariantResponse struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Price       decimal.Decimal   `json:"price"`
	WeightKg    decimal.Decimal   `json:"weightKg"`
	Images      []string          `json:"images"`
	Variants    []VariantResponse `json:"variants"`
	Active      bool              `json:"active"`
	TotalStock  int               `json:"totalStock"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Version     int               `json:"version"`
}

// ProductListResult is a page of products
type ProductListResult struct {
	Items    []ProductResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = VariantResponse{Color: v.Color, Size: v.Size, Stock: v.Stock}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		WeightKg:    p.WeightKg,
		Images:      images,
		Variants:    variants,
		Active:      p.IsActive(),
		TotalStock:  p.TotalStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func toVariants(in []VariantInput) []catalog.Variant {
	out := make([]catalog.Variant, len(in))
	for i, v := range in {
		out[i] = catalog.Variant{Color: v.Color, Size: v.Size, Stock: v.Stock}
	}
	return out
}
