// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"archive/tar"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/brpub/brpub/internal/jsondoc"
	"github.com/brpub/brpub/internal/registry"
	"github.com/brpub/brpub/internal/testutil"
)

const moduleBazel = "module(\n    name = \"foo\",\n    version = \"1.0.0\",\n)\n"

func TestFillURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		template string
		want     string
	}{
		{template: "https://x/{OWNER}/{REPO}/{TAG}.tar.gz", want: "https://x/acme/widget/v1.2.0.tar.gz"},
		{template: "https://github.com/{OWNER}/{REPO}/releases/download/{TAG}/{REPO}-{TAG}.zip", want: "https://github.com/acme/widget/releases/download/v1.2.0/widget-v1.2.0.zip"},
		{template: "https://x/{VERSION}/fixed.tar.gz", want: "https://x/{VERSION}/fixed.tar.gz"},
	}

	for _, tt := range tests {
		if got := FillURL(tt.template, "acme", "widget", "v1.2.0"); got != tt.want {
			t.Errorf("FillURL(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestArchiveName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://x/acme/widget/v1.2.0.tar.gz", want: "v1.2.0.tar.gz"},
		{url: "https://x/a.zip?token=secret", want: "a.zip"},
		{url: "https://x/", wantErr: true},
		{url: "https://x", wantErr: true},
		{url: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ArchiveName(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ArchiveName(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ArchiveName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFindModuleFile(t *testing.T) {
	t.Parallel()

	extracted := []string{
		"foo-1.0.0/examples/MODULE.bazel",
		"foo-1.0.0/README.md",
		"foo-1.0.0/MODULE.bazel",
		"bar/MODULE.bazel",
	}
	got, err := FindModuleFile(extracted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "bar/MODULE.bazel" {
		t.Errorf("FindModuleFile() = %q, want %q", got, "bar/MODULE.bazel")
	}

	if _, err := FindModuleFile([]string{"foo/MODULE.bazel.lock", "foo/BUILD"}); !errors.Is(err, ErrNoModuleFile) {
		t.Errorf("expected ErrNoModuleFile when no MODULE.bazel is present, got %v", err)
	}
}

func TestUpdateSource_TarGz(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	template := filepath.Join(dir, "source.template.json")
	versionDir := filepath.Join(dir, "modules", "foo", "1.0.0")
	tmpDir := filepath.Join(dir, "tmp")
	writeFile(t, template, `{"url": "https://x/{OWNER}/{REPO}/{TAG}.tar.gz", "strip_prefix": "foo-1.0.0", "integrity": ""}`)
	writeFile(t, filepath.Join(versionDir, ".keep"), "")

	archive := tarGz(t,
		testutil.File("foo-1.0.0/BUILD.bazel", ""),
		testutil.File("foo-1.0.0/MODULE.bazel", moduleBazel),
		testutil.File("foo-1.0.0/e2e/MODULE.bazel", "module(name = \"e2e\")\n"),
	)
	dl := &fakeDownloader{data: archive}

	res, err := UpdateSource(t.Context(), dl, SourceRequest{
		TemplatePath: template,
		VersionDir:   versionDir,
		TmpDir:       tmpDir,
		Owner:        "acme",
		Repo:         "foo",
		Tag:          "v1.0.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"https://x/acme/foo/v1.0.0.tar.gz"}; !slices.Equal(dl.urls, want) {
		t.Errorf("downloaded %v, want %v", dl.urls, want)
	}
	if res.ArchivePath != filepath.Join(tmpDir, "v1.0.0.tar.gz") {
		t.Errorf("ArchivePath = %q", res.ArchivePath)
	}
	if res.Integrity != registry.Digest(archive) {
		t.Errorf("Integrity = %q, want digest of archive", res.Integrity)
	}
	if got := readFile(t, filepath.Join(versionDir, ModuleFileName)); got != moduleBazel {
		t.Errorf("MODULE.bazel = %q, want %q", got, moduleBazel)
	}

	doc, err := jsondoc.Load(filepath.Join(versionDir, SourceFileName))
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.StringValue("url"); got != "https://x/acme/foo/v1.0.0.tar.gz" {
		t.Errorf("url = %q", got)
	}
	if got, _ := doc.StringValue("integrity"); got != res.Integrity {
		t.Errorf("integrity = %q, want %q", got, res.Integrity)
	}
	if got, _ := doc.StringValue("strip_prefix"); got != "foo-1.0.0" {
		t.Errorf("strip_prefix = %q, want template value", got)
	}
	if got := readFile(t, template); got != `{"url": "https://x/{OWNER}/{REPO}/{TAG}.tar.gz", "strip_prefix": "foo-1.0.0", "integrity": ""}` {
		t.Errorf("template was modified: %s", got)
	}
}

func TestUpdateSource_Zip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	template := filepath.Join(dir, "source.template.json")
	versionDir := filepath.Join(dir, "1.0.0")
	writeFile(t, template, `{"url": "https://x/{REPO}-{TAG}.zip"}`)
	writeFile(t, filepath.Join(versionDir, ".keep"), "")

	archive := zipArchive(t, testutil.File("foo/MODULE.bazel", moduleBazel))
	res, err := UpdateSource(t.Context(), &fakeDownloader{data: archive}, SourceRequest{
		TemplatePath: template,
		VersionDir:   versionDir,
		TmpDir:       filepath.Join(dir, "tmp"),
		Owner:        "acme",
		Repo:         "foo",
		Tag:          "v1.0.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(res.ArchivePath) != "foo-v1.0.0.zip" {
		t.Errorf("ArchivePath = %q", res.ArchivePath)
	}
	if got := readFile(t, res.ModulePath); got != moduleBazel {
		t.Errorf("MODULE.bazel = %q", got)
	}
}

func TestUpdateSource_Errors(t *testing.T) {
	t.Parallel()

	transportErr := &registry.TransportError{URL: "https://x/a.tar.gz", StatusCode: 404}

	tests := []struct {
		name     string
		template string
		dl       *fakeDownloader
		wantErr  error
	}{
		{
			name:    "missing template",
			dl:      &fakeDownloader{},
			wantErr: ErrNotFound,
		},
		{
			name:     "template without url",
			template: `{"integrity": ""}`,
			dl:       &fakeDownloader{},
			wantErr:  ErrConfig,
		},
		{
			name:     "download failure",
			template: `{"url": "https://x/a.tar.gz"}`,
			dl:       &fakeDownloader{err: transportErr},
			wantErr:  registry.ErrTransport,
		},
		{
			name:     "corrupt archive",
			template: `{"url": "https://x/a.tar.gz"}`,
			dl:       &fakeDownloader{data: []byte("not an archive")},
			wantErr:  registry.ErrExtraction,
		},
		{
			name:     "archive without MODULE.bazel",
			template: `{"url": "https://x/a.tar.gz"}`,
			dl:       &fakeDownloader{data: tarGz(t, testutil.File("foo/BUILD", ""))},
			wantErr:  ErrNotFound,
		},
		{
			name:     "MODULE.bazel is a symlink",
			template: `{"url": "https://x/a.tar.gz"}`,
			dl: &fakeDownloader{data: tarGz(t,
				testutil.File("foo/real/MODULE.bazel", moduleBazel),
				testutil.ArchiveEntry{Name: "foo/MODULE.bazel", Typeflag: tar.TypeSymlink, Linkname: "real/MODULE.bazel"},
			)},
			wantErr: ErrModuleFileNotRegular,
		},
		{
			name:     "MODULE.bazel chained through a link out of tmp",
			template: `{"url": "https://x/a.tar.gz"}`,
			dl: &fakeDownloader{data: tarGz(t,
				testutil.ArchiveEntry{Name: "p/q/c", Typeflag: tar.TypeSymlink, Linkname: "../.."},
				testutil.ArchiveEntry{Name: "MODULE.bazel", Typeflag: tar.TypeSymlink, Linkname: "p/q/c/../secret.txt"},
			)},
			wantErr: registry.ErrExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			template := filepath.Join(dir, "source.template.json")
			if tt.template != "" {
				writeFile(t, template, tt.template)
			}
			writeFile(t, filepath.Join(dir, "secret.txt"), "outside tmp\n")

			_, err := UpdateSource(t.Context(), tt.dl, SourceRequest{
				TemplatePath: template,
				VersionDir:   dir,
				TmpDir:       filepath.Join(dir, "tmp"),
				Owner:        "acme",
				Repo:         "foo",
				Tag:          "v1.0.0",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateSource() error = %v, want %v", err, tt.wantErr)
			}
			if _, statErr := os.Lstat(filepath.Join(dir, ModuleFileName)); !errors.Is(statErr, fs.ErrNotExist) {
				t.Errorf("MODULE.bazel written to the version directory despite the error (stat: %v)", statErr)
			}
		})
	}
}

// mismatchDownloader writes one payload to disk but reports another.
type mismatchDownloader struct{ onDisk, reported []byte }

func (d mismatchDownloader) FetchToFile(_ context.Context, _, dest string) ([]byte, error) {
	if err := os.WriteFile(dest, d.onDisk, 0o644); err != nil {
		return nil, err
	}
	return d.reported, nil
}

func TestUpdateSource_DigestsFileOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	template := filepath.Join(dir, "source.template.json")
	writeFile(t, template, `{"url": "https://x/a.tar.gz"}`)

	archive := tarGz(t, testutil.File("foo/MODULE.bazel", moduleBazel))
	_, err := UpdateSource(t.Context(), mismatchDownloader{onDisk: archive, reported: []byte("other")}, SourceRequest{
		TemplatePath: template,
		VersionDir:   dir,
		TmpDir:       filepath.Join(dir, "tmp"),
		Owner:        "acme",
		Repo:         "foo",
		Tag:          "v1.0.0",
	})
	if err == nil || !strings.Contains(err.Error(), "differs from the downloaded archive") {
		t.Fatalf("expected digest mismatch error, got %v", err)
	}
	if _, statErr := os.Lstat(filepath.Join(dir, SourceFileName)); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("source.json written despite the digest mismatch")
	}
}
