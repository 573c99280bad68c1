// SPDX-License-Identifier: MPL-2.0

package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
)

var (
	// ErrFieldMissing is returned when a requested field is absent.
	ErrFieldMissing = errors.New("field missing")
	// ErrFieldType is returned when a field holds a value of an unexpected type.
	ErrFieldType = errors.New("unexpected field type")
)

// Object is a JSON object that remembers the order in which its keys were
// first seen. Values are nil, bool, json.Number, string, []any or *Object.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// StringValue returns the string stored under key.
func (o *Object) StringValue(key string) (string, error) {
	v, ok := o.values[key]
	if !ok {
		return "", fmt.Errorf("%q: %w", key, ErrFieldMissing)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q: %w: want string, got %s", key, ErrFieldType, typeName(v))
	}
	return s, nil
}

// StringList returns the list of strings stored under key.
func (o *Object) StringList(key string) ([]string, error) {
	v, ok := o.values[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrFieldMissing)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%q: %w: want list, got %s", key, ErrFieldType, typeName(v))
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%q[%d]: %w: want string, got %s", key, i, ErrFieldType, typeName(item))
		}
		out = append(out, s)
	}
	return out, nil
}

// SetStringList stores values under key as a JSON list.
func (o *Object) SetStringList(key string, values []string) {
	items := make([]any, 0, len(values))
	for _, v := range values {
		items = append(items, v)
	}
	o.Set(key, items)
}

// Sorted returns a deep copy with the keys of every nested object sorted.
func (o *Object) Sorted() *Object {
	out := NewObject()
	keys := slices.Clone(o.keys)
	sort.Strings(keys)
	for _, k := range keys {
		out.Set(k, sortedValue(o.values[k]))
	}
	return out
}

// Plain converts the Object into map[string]any, recursively, for consumers
// that expect generic JSON values.
func (o *Object) Plain() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = plainValue(o.values[k])
	}
	return out
}

// MarshalJSON writes the fields in insertion order without HTML escaping.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalValue(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order and number text.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	obj, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level object")
	}

	*o = *obj
	return nil
}

func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	items := []any{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

// marshalValue encodes v like json.Marshal but leaves <, > and & alone.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func sortedValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Sorted()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = sortedValue(item)
		}
		return out
	default:
		return v
	}
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case *Object:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
