package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is the contact and shipping address captured at checkout.
// It doubles as the billing address when no separate one is given.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country,omitempty"`
}

// Normalize trims every field and defaults the country
func (a Address) Normalize() Address {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	a.Apartment = strings.TrimSpace(a.Apartment)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "India"
	}
	return a
}

// MissingFields returns the json names of required fields that are blank,
// in form order.
func (a Address) MissingFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
		{"phone", a.Phone},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsComplete reports whether all required fields are present
func (a Address) IsComplete() bool {
	return len(a.MissingFields()) == 0
}

// IsEmpty returns true if no field is set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// FullName joins first and last name
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// String returns a single-line postal form
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Address, a.Apartment, a.City, a.State, a.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Value implements driver.Valuer for JSON column storage
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = Address{}
		return nil
	}

	return json.Unmarshal(data, a)
}
