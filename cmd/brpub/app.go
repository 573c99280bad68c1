// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/brpub/brpub/internal/config"
	"github.com/brpub/brpub/internal/publish"
	"github.com/brpub/brpub/internal/registry"
	"github.com/brpub/brpub/internal/vcs"
)

type (
	// App wires the CLI services. Every Cobra handler receives the App and
	// delegates to its services, so tests can swap any of them.
	App struct {
		Config       ConfigProvider
		NewPublisher PublisherFactory
		stdout       io.Writer
		stderr       io.Writer
	}

	// Dependencies are the injection points of NewApp. Nil fields get the
	// production defaults.
	Dependencies struct {
		Config       ConfigProvider
		NewPublisher PublisherFactory
		Stdout       io.Writer
		Stderr       io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// PublishService publishes one module release into a registry.
	PublishService interface {
		Publish(ctx context.Context, req publish.Request) (*publish.Result, error)
	}

	// PublisherFactory builds a PublishService for the effective
	// configuration. The logger receives progress and debug output.
	PublisherFactory func(cfg *config.Config, logger *log.Logger) PublishService
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewPublisher == nil {
		deps.NewPublisher = newPublisher
	}

	return &App{
		Config:       deps.Config,
		NewPublisher: deps.NewPublisher,
		stdout:       deps.Stdout,
		stderr:       deps.Stderr,
	}
}

// newPublisher builds the production pipeline: git through os/exec and
// archive downloads over HTTP, both configured from cfg.
func newPublisher(cfg *config.Config, logger *log.Logger) PublishService {
	fetcher := registry.NewFetcher(
		registry.WithUserAgent(cfg.HTTP.UserAgent),
		registry.WithLogger(logger),
	)
	gitBinary := cfg.Git.Binary.String()

	return publish.New(
		publish.WithLogger(logger),
		publish.WithDownloader(fetcher),
		publish.WithRepositoryFactory(func(dir string) vcs.Repository {
			return vcs.NewGit(dir, vcs.WithBinary(gitBinary))
		}),
	)
}

// newLogger returns the CLI logger writing to w. Debug output is enabled in
// verbose mode.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}
