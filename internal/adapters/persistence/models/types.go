package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is an ordered list of strings stored as a JSON text column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return encodeJSON([]string(l))
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	raw, err := rawBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// GormDataType keeps the column portable across mysql, postgres and sqlite
func (StringList) GormDataType() string {
	return "text"
}

// JSONMap is a free-form JSON object column
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return encodeJSON(map[string]interface{}(m))
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	raw, err := rawBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(raw, (*map[string]interface{})(m))
}

// GormDataType keeps the column portable across mysql, postgres and sqlite
func (JSONMap) GormDataType() string {
	return "text"
}

func rawBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", value)
	}
}

// encodeJSON keeps &, < and > literal so LIKE filters see the stored text as typed
func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// JSONFragment returns s as it appears inside a stored JSON string, without the quotes
func JSONFragment(s string) string {
	encoded, err := encodeJSON(s)
	if err != nil || len(encoded) < 2 {
		return s
	}
	return encoded[1 : len(encoded)-1]
}
