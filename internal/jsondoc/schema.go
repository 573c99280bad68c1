// SPDX-License-Identifier: MPL-2.0

package jsondoc

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// KindMetadata identifies a module-level metadata.json document.
	KindMetadata Kind = "metadata"
	// KindSource identifies a per-version source.json document.
	KindSource Kind = "source"
)

// ErrInvalidDocument is the sentinel wrapped by SchemaError.
var ErrInvalidDocument = errors.New("invalid registry document")

var (
	//go:embed schemas/*.schema.json
	schemaFS embed.FS

	compiled   = map[Kind]*jsonschema.Schema{}
	compiledMu sync.Mutex
)

type (
	// Kind names one of the registry document schemas.
	Kind string

	// SchemaError reports a document that does not satisfy its schema.
	SchemaError struct {
		Kind Kind
		Err  error
	}
)

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s document does not match schema: %v", e.Kind, e.Err)
}

// Unwrap exposes both ErrInvalidDocument and the validator error.
func (e *SchemaError) Unwrap() []error { return []error{ErrInvalidDocument, e.Err} }

// Validate checks obj against the embedded schema for kind.
func Validate(kind Kind, obj *Object) error {
	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}
	if err := schema.Validate(obj.Plain()); err != nil {
		return &SchemaError{Kind: kind, Err: err}
	}
	return nil
}

// schemaFor compiles the schema for kind once and caches it.
func schemaFor(kind Kind) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[kind]; ok {
		return s, nil
	}

	data, err := schemaFS.ReadFile("schemas/" + string(kind) + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown document kind %q: %w", kind, err)
	}

	resourceID := "inmemory://brpub/" + string(kind) + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceID, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	compiled[kind] = s
	return s, nil
}
