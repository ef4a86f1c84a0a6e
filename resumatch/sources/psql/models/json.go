package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"resumatch/resumatch/types"
)

// EntityList stores extracted entities as a JSON column.
type EntityList []types.Entity

func (e EntityList) Value() (driver.Value, error) {
	if e == nil {
		e = EntityList{}
	}
	return json.Marshal(e)
}

func (e *EntityList) Scan(value interface{}) error {
	if value == nil {
		*e = EntityList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported entity list column type %T", value)
	}
}

// JSONMap stores an open key/value map as a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
}
