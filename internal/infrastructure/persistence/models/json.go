package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores V in a jsonb column
type JSON[V any] struct {
	V V
}

// NewJSON wraps v
func NewJSON[V any](v V) JSON[V] {
	return JSON[V]{V: v}
}

// Value implements driver.Valuer
func (j JSON[V]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (j *JSON[V]) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		var zero V
		j.V = zero
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
	return json.Unmarshal(data, &j.V)
}
