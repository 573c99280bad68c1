// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/brpub/brpub/internal/jsondoc"
	"github.com/brpub/brpub/internal/registry"
)

const (
	urlField       = "url"
	integrityField = "integrity"
)

type (
	// Downloader fetches a release archive into a local file and returns the
	// bytes it wrote. registry.Fetcher satisfies it.
	Downloader interface {
		FetchToFile(ctx context.Context, rawURL, dest string) ([]byte, error)
	}

	// SourceRequest names the inputs of UpdateSource.
	SourceRequest struct {
		// TemplatePath is the source.json template in the module repository.
		TemplatePath string
		// VersionDir receives source.json and MODULE.bazel.
		VersionDir string
		// TmpDir receives the downloaded archive and its extracted tree.
		TmpDir string
		Owner  string
		Repo   string
		Tag    string
	}

	// SourceResult describes what UpdateSource downloaded and wrote.
	SourceResult struct {
		URL         string
		Integrity   string
		ArchivePath string
		// ModuleSource is the extracted MODULE.bazel that was copied.
		ModuleSource string
		SourcePath   string
		ModulePath   string
	}
)

var _ Downloader = (*registry.Fetcher)(nil)

// FillURL substitutes the {OWNER}, {REPO} and {TAG} placeholders of a URL
// template. Other text, including unknown placeholders, is left untouched.
func FillURL(template, owner, repo, tag string) string {
	return strings.NewReplacer("{OWNER}", owner, "{REPO}", repo, "{TAG}", tag).Replace(template)
}

// ArchiveName returns the final path segment of rawURL, used as the local
// file name of the downloaded archive.
func ArchiveName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &ConfigError{Reason: fmt.Sprintf("invalid source url %q", rawURL), Err: err}
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", &ConfigError{Reason: fmt.Sprintf("source url %q has no file name", rawURL)}
	}
	return name, nil
}

// UpdateSource fills the source template for one release, downloads and
// digests the archive, copies the archive's MODULE.bazel into the version
// directory and writes source.json next to it.
func UpdateSource(ctx context.Context, dl Downloader, req SourceRequest) (*SourceResult, error) {
	doc, err := loadTemplate(req.TemplatePath, "source template")
	if err != nil {
		return nil, err
	}

	tmpl, err := doc.StringValue(urlField)
	if err != nil {
		return nil, &ConfigError{Path: req.TemplatePath, Reason: "invalid url template", Err: err}
	}
	sourceURL := FillURL(tmpl, req.Owner, req.Repo, req.Tag)
	doc.Set(urlField, sourceURL)

	name, err := ArchiveName(sourceURL)
	if err != nil {
		return nil, err
	}
	if err := mkdirAll(req.TmpDir); err != nil {
		return nil, err
	}
	archivePath := filepath.Join(req.TmpDir, name)

	data, err := dl.FetchToFile(ctx, sourceURL, archivePath)
	if err != nil {
		return nil, err
	}
	integrity, err := registry.DigestFile(archivePath)
	if err != nil {
		return nil, err
	}
	if integrity != registry.Digest(data) {
		return nil, fmt.Errorf("%s on disk differs from the downloaded archive", archivePath)
	}
	doc.Set(integrityField, integrity)

	extracted, err := registry.Extract(archivePath, req.TmpDir)
	if err != nil {
		return nil, err
	}
	moduleRel, err := FindModuleFile(extracted)
	if err != nil {
		return nil, &NotFoundError{What: ModuleFileName, Path: archivePath, Err: err}
	}
	moduleSource := filepath.Join(req.TmpDir, filepath.FromSlash(moduleRel))
	info, err := os.Lstat(moduleSource)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &registry.ExtractionError{Archive: archivePath, Entry: moduleRel, Err: ErrModuleFileNotRegular}
	}
	modulePath := filepath.Join(req.VersionDir, ModuleFileName)
	if err := copyFile(moduleSource, modulePath); err != nil {
		return nil, err
	}

	if err := jsondoc.Validate(jsondoc.KindSource, doc); err != nil {
		return nil, &ConfigError{Path: req.TemplatePath, Reason: "source does not match the registry schema", Err: err}
	}
	sourcePath := filepath.Join(req.VersionDir, SourceFileName)
	if err := jsondoc.Save(sourcePath, doc); err != nil {
		return nil, err
	}

	return &SourceResult{
		URL:          sourceURL,
		Integrity:    integrity,
		ArchivePath:  archivePath,
		ModuleSource: moduleSource,
		SourcePath:   sourcePath,
		ModulePath:   modulePath,
	}, nil
}

// FindModuleFile picks the MODULE.bazel to publish from the slash-separated
// paths extracted from an archive: the shallowest one, ties broken by
// lexical order.
func FindModuleFile(extracted []string) (string, error) {
	for _, p := range registry.SortByDepth(extracted) {
		if path.Base(p) == ModuleFileName {
			return p, nil
		}
	}
	return "", ErrNoModuleFile
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func mkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
