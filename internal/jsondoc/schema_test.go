// SPDX-License-Identifier: MPL-2.0

package jsondoc

import (
	"errors"
	"testing"
)

func mustObject(t *testing.T, raw string) *Object {
	t.Helper()
	obj := NewObject()
	if err := obj.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("parsing %s: %v", raw, err)
	}
	return obj
}

func TestValidate_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "minimal",
			doc:  `{"versions": [], "repository": ["github:acme/foo"]}`,
		},
		{
			name: "extra fields allowed",
			doc:  `{"versions": ["1.0.0"], "repository": ["github:acme/foo"], "homepage": "https://acme.dev", "maintainers": [{"name": "A", "github_user_id": 12}], "yanked_versions": {}}`,
		},
		{
			name:    "missing repository",
			doc:     `{"versions": ["1.0.0"]}`,
			wantErr: true,
		},
		{
			name:    "duplicate versions",
			doc:     `{"versions": ["1.0.0", "1.0.0"], "repository": ["github:acme/foo"]}`,
			wantErr: true,
		},
		{
			name:    "empty repository list",
			doc:     `{"versions": [], "repository": []}`,
			wantErr: true,
		},
		{
			name:    "non-string version",
			doc:     `{"versions": [1], "repository": ["github:acme/foo"]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(KindMetadata, mustObject(t, tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidDocument) {
					t.Errorf("error does not wrap ErrInvalidDocument: %v", err)
				}
				var se *SchemaError
				if !errors.As(err, &se) || se.Kind != KindMetadata {
					t.Errorf("expected *SchemaError for metadata, got %T", err)
				}
			}
		})
	}
}

func TestValidate_Source(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "filled",
			doc:  `{"url": "https://github.com/acme/foo/archive/v1.0.0.tar.gz", "integrity": "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", "strip_prefix": "foo-1.0.0", "patch_strip": 1}`,
		},
		{
			name:    "missing integrity",
			doc:     `{"url": "https://example.com/a.zip"}`,
			wantErr: true,
		},
		{
			name:    "malformed integrity",
			doc:     `{"url": "https://example.com/a.zip", "integrity": "md5-abc"}`,
			wantErr: true,
		},
		{
			name:    "empty url",
			doc:     `{"url": "", "integrity": "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(KindSource, mustObject(t, tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	t.Parallel()

	if err := Validate(Kind("bazel_registry"), NewObject()); err == nil {
		t.Error("expected error for unknown kind")
	}
}
