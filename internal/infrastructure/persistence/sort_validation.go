package persistence

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField.
// Sort columns are interpolated into SQL so only whitelisted names pass.
func ValidateSortField(sortField string, allowed map[string]bool, defaultField string) string {
	f := strings.TrimSpace(sortField)
	if allowed[f] {
		return f
	}
	return defaultField
}

// ProductSortFields are the product list sort columns
var ProductSortFields = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"updated_at": true,
}

// OrderSortFields are the order list sort columns
var OrderSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"total_amount": true,
	"status":       true,
	"order_number": true,
}

// UserSortFields are the admin user list sort columns
var UserSortFields = map[string]bool{
	"created_at":    true,
	"name":          true,
	"email":         true,
	"last_login_at": true,
}

// orderAndPage applies a whitelisted ORDER BY plus LIMIT/OFFSET. The id
// tiebreaker keeps pages stable when sort values repeat.
func orderAndPage(q *gorm.DB, f shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	q = q.Order(field + " " + ValidateSortOrder(f.OrderDir)).Order("id")
	if f.PageSize > 0 {
		q = q.Limit(f.PageSize).Offset(f.Offset())
	}
	return q
}

// likePattern lowercases s and wraps it for a contains match
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
