package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Row is one result record. Column order is kept as received so that
// "first string column" style heuristics behave the same as on the wire.
type Row struct {
	keys   []string
	values map[string]interface{}
}

// NewRow builds a row from alternating key/value pairs
func NewRow(kv ...interface{}) Row {
	r := Row{values: make(map[string]interface{}, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return r
}

// Keys returns column names in order
func (r Row) Keys() []string {
	return r.keys
}

// Get returns the value for a column
func (r Row) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set adds or replaces a column value
func (r *Row) Set(key string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Len returns the number of columns
func (r Row) Len() int {
	return len(r.keys)
}

// UnmarshalJSON decodes an object preserving key order. Numbers stay json.Number.
func (r *Row) UnmarshalJSON(data []byte) error {
	*r = Row{values: map[string]interface{}{}}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row: expected string key, got %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("row: column %q: %w", key, err)
		}
		r.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the row with its original column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits the row as a mapping in column order
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		v := r.values[k]
		if n, ok := v.(json.Number); ok {
			v = numberValue(n)
		}
		var value yaml.Node
		if err := value.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

// IsNumeric reports whether v is a JSON number
func IsNumeric(v interface{}) bool {
	switch v.(type) {
	case json.Number, float64, float32, int, int64, int32, uint, uint64:
		return true
	}
	return false
}

// IsString reports whether v is a JSON string
func IsString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

// Stringify renders a cell value for display
func Stringify(v interface{}) string {
	return stringify(v)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func numberValue(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
