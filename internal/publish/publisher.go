// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/brpub/brpub/internal/registry"
	"github.com/brpub/brpub/internal/vcs"
	"github.com/brpub/brpub/pkg/types"
)

const (
	// ModuleFileName is the Bazel module declaration file.
	ModuleFileName = "MODULE.bazel"
	// TemplateDir holds the release templates inside the module repository.
	TemplateDir = ".br"
	// MetadataTemplateName is the metadata.json template in TemplateDir.
	MetadataTemplateName = "metadata.template.json"
	// SourceTemplateName is the source.json template in TemplateDir.
	SourceTemplateName = "source.template.json"
	// ModulesDir is the registry directory holding one entry per module.
	ModulesDir = "modules"
	// MetadataFileName is the per-module metadata document.
	MetadataFileName = "metadata.json"
	// SourceFileName is the per-version source descriptor.
	SourceFileName = "source.json"
	// DefaultTmpDirName is the download directory inside the registry used
	// when Request.TmpDir is empty.
	DefaultTmpDirName = "tmp"
)

type (
	// RepositoryFactory opens the version-control handle for a directory.
	RepositoryFactory func(dir string) vcs.Repository

	// Option configures a Publisher.
	Option func(*Publisher)

	// Publisher runs the release pipeline.
	Publisher struct {
		openRepo   RepositoryFactory
		downloader Downloader
		logger     *log.Logger
	}

	// Request describes one release to publish.
	Request struct {
		// ModuleDir is the root of the module repository.
		ModuleDir types.FilesystemPath
		// RegistryDir is the root of the registry working tree.
		RegistryDir types.FilesystemPath
		// TmpDir receives downloads; defaults to <RegistryDir>/tmp.
		TmpDir types.FilesystemPath
		// Tag is the release tag; empty means the latest tag of ModuleDir.
		Tag string
	}

	// Result reports what a successful Publish recorded.
	Result struct {
		Module    string
		Tag       string
		Version   string
		Branch    string
		Commit    string
		Owner     string
		Repo      string
		URL       string
		Integrity string

		MetadataPath string
		SourcePath   string
		ModulePath   string
		ArchivePath  string
	}
)

// WithRepositoryFactory overrides how repository handles are opened.
func WithRepositoryFactory(fn RepositoryFactory) Option {
	return func(p *Publisher) {
		p.openRepo = fn
	}
}

// WithDownloader overrides the archive downloader.
func WithDownloader(d Downloader) Option {
	return func(p *Publisher) {
		p.downloader = d
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Publisher. Without options it drives the git binary on PATH
// and downloads with a default registry.Fetcher.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		openRepo: func(dir string) vcs.Repository { return vcs.NewGit(dir) },
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.downloader == nil {
		p.downloader = registry.NewFetcher(registry.WithLogger(p.logger))
	}
	return p
}

// Publish records the release described by req in the registry working
// tree and commits it on a new branch. Files written before a failure are
// left in place.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	moduleDir := string(req.ModuleDir)
	registryDir := string(req.RegistryDir)
	tmpDir := string(req.TmpDir)
	if tmpDir == "" {
		tmpDir = req.RegistryDir.Join(DefaultTmpDirName).String()
	}

	name, err := ReadModuleName(moduleDir)
	if err != nil {
		return nil, err
	}

	tag := req.Tag
	if tag == "" {
		tag, err = p.openRepo(moduleDir).LatestTag(ctx)
		if errors.Is(err, vcs.ErrNoTags) {
			return nil, &NotFoundError{What: "release tag", Path: moduleDir, Err: err}
		}
		if err != nil {
			return nil, err
		}
	}

	version := VersionFromTag(tag)
	if version == "" {
		return nil, &ConfigError{Reason: fmt.Sprintf("tag %q yields an empty version", tag)}
	}
	for _, w := range TagWarnings(tag) {
		p.logger.Warn(w)
	}
	p.logger.Info("Publishing", "release", CommitMessage(name, version))

	res := &Result{
		Module:  name,
		Tag:     tag,
		Version: version,
		Branch:  BranchName(name, version),
		Commit:  CommitMessage(name, version),
	}

	registryRepo := p.openRepo(registryDir)
	if err := registryRepo.CreateBranch(ctx, res.Branch); err != nil {
		return nil, err
	}

	moduleRoot := filepath.Join(registryDir, ModulesDir, name)
	versionDir := filepath.Join(moduleRoot, version)
	if err := mkdirAll(versionDir); err != nil {
		return nil, err
	}

	res.MetadataPath = filepath.Join(moduleRoot, MetadataFileName)
	res.Owner, res.Repo, err = UpdateMetadata(
		filepath.Join(moduleDir, TemplateDir, MetadataTemplateName),
		res.MetadataPath,
		version,
	)
	if err != nil {
		return nil, err
	}

	src, err := UpdateSource(ctx, p.downloader, SourceRequest{
		TemplatePath: filepath.Join(moduleDir, TemplateDir, SourceTemplateName),
		VersionDir:   versionDir,
		TmpDir:       tmpDir,
		Owner:        res.Owner,
		Repo:         res.Repo,
		Tag:          tag,
	})
	if err != nil {
		return nil, err
	}
	res.URL = src.URL
	res.Integrity = src.Integrity
	res.SourcePath = src.SourcePath
	res.ModulePath = src.ModulePath
	res.ArchivePath = src.ArchivePath

	if err := registryRepo.StageAll(ctx); err != nil {
		return nil, err
	}
	if err := registryRepo.Commit(ctx, res.Commit); err != nil {
		return nil, err
	}

	p.logger.Info("Committed", "branch", res.Branch, "message", res.Commit)
	return res, nil
}

func (r Request) validate() error {
	var errs []error
	if ok, fieldErrs := r.ModuleDir.IsValid(); !ok {
		errs = append(errs, fmt.Errorf("module directory: %w", errors.Join(fieldErrs...)))
	}
	if ok, fieldErrs := r.RegistryDir.IsValid(); !ok {
		errs = append(errs, fmt.Errorf("registry directory: %w", errors.Join(fieldErrs...)))
	}
	if len(errs) == 0 {
		return nil
	}
	return &ConfigError{Reason: "invalid publish request", Err: errors.Join(errs...)}
}
