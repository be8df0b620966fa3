package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringMap is a string-to-string JSON document column, used for free-form
// records like shipping addresses.
type StringMap map[string]string

// Value marshals the map for storage.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan loads the map from a jsonb/text column.
func (m *StringMap) Scan(src any) error {
	if src == nil {
		*m = StringMap{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("string map: unsupported source type %T", src)
	}
	if len(raw) == 0 {
		*m = StringMap{}
		return nil
	}
	return json.Unmarshal(raw, m)
}
