// SPDX-License-Identifier: MPL-2.0

package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf16"
	"unicode/utf8"
)

const indent = "    "

type (
	saveOptions struct {
		sortKeys bool
	}

	// SaveOption configures Save.
	SaveOption func(*saveOptions)
)

// WithSortKeys controls whether object keys are sorted on write. Keys are
// sorted unless WithSortKeys(false) is given.
func WithSortKeys(sortKeys bool) SaveOption {
	return func(o *saveOptions) {
		o.sortKeys = sortKeys
	}
}

// Load reads the JSON object stored at path.
func Load(path string) (*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	obj := NewObject()
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return obj, nil
}

// Encode renders obj with four-space indentation and a trailing newline.
// Non-ASCII characters are written as \uXXXX escapes so existing registry
// files keep their byte layout; HTML characters are left as they are.
func Encode(obj *Object, opts ...SaveOption) ([]byte, error) {
	o := saveOptions{sortKeys: true}
	for _, opt := range opts {
		opt(&o)
	}

	doc := obj
	if o.sortKeys {
		doc = obj.Sorted()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return escapeNonASCII(buf.Bytes()), nil
}

// escapeNonASCII rewrites every rune above U+007F as a lower-case \uXXXX
// escape, using a UTF-16 surrogate pair above U+FFFF. The encoder only emits
// such runes inside strings and never emits invalid UTF-8.
func escapeNonASCII(data []byte) []byte {
	if !bytes.ContainsFunc(data, func(r rune) bool { return r >= utf8.RuneSelf }) {
		return data
	}

	out := make([]byte, 0, len(data)+len(data)/4)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		switch {
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

// Save writes obj to path, replacing any existing file.
func Save(path string, obj *Object, opts ...SaveOption) error {
	data, err := Encode(obj, opts...)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
