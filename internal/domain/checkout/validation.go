package checkout

import (
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
)

// FieldShippingOption is reported when no courier has been picked
const FieldShippingOption = "shippingOption"

// ValidateSubmission checks the shipping form and the selected option.
// The returned error lists every missing field.
func ValidateSubmission(form valueobject.Address, selected shipping.Option) error {
	missing := form.MissingFields()
	if selected.IsZero() {
		missing = append(missing, FieldShippingOption)
	}
	if len(missing) > 0 {
		return shared.NewValidationError("", missing...)
	}
	return nil
}

// CanQuote reports whether the form has enough to request shipping rates
func CanQuote(form valueobject.Address) bool {
	f := form.Normalize()
	return f.ZipCode != "" && f.State != ""
}
