package cart

import (
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

func itemFor(p *catalog.Product, qty int) valueobject.LineItem {
	return valueobject.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Color:     "Red",
		Size:      "M",
		Quantity:  qty,
		UnitPrice: p.Price,
	}
}
