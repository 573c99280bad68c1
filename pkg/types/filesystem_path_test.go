// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilesystemPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path FilesystemPath
		want bool
	}{
		{"absolute path", "/src/bazel-registry", true},
		{"relative path", "modules/foo", true},
		{"dot path", ".", true},
		{"path with spaces", "/home/me/my registry", true},
		{"empty is invalid", "", false},
		{"whitespace only is invalid", "   ", false},
		{"tab only is invalid", "\t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, errs := tt.path.IsValid()
			if ok != tt.want {
				t.Fatalf("FilesystemPath(%q).IsValid() = %v, want %v", tt.path, ok, tt.want)
			}
			if ok {
				if len(errs) != 0 {
					t.Errorf("valid path returned errors: %v", errs)
				}
				return
			}
			if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidFilesystemPath) {
				t.Fatalf("errors = %v, want one ErrInvalidFilesystemPath", errs)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(errs[0], &fpErr) || fpErr.Value != tt.path {
				t.Errorf("error should be *InvalidFilesystemPathError for %q, got %T", tt.path, errs[0])
			}
		})
	}
}

func TestFilesystemPath_Join(t *testing.T) {
	t.Parallel()

	got := FilesystemPath("registry").Join("modules", "foo", "1.0.0")
	if want := filepath.Join("registry", "modules", "foo", "1.0.0"); got.String() != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestFilesystemPath_Abs(t *testing.T) {
	t.Parallel()

	got, err := FilesystemPath("registry").Abs()
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}
	if !filepath.IsAbs(got.String()) {
		t.Errorf("Abs() = %q, want absolute path", got)
	}
}
