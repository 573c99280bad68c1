// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/brpub/brpub/internal/config"
	"github.com/brpub/brpub/internal/issue"
	"github.com/brpub/brpub/internal/publish"
	"github.com/brpub/brpub/internal/registry"
	"github.com/brpub/brpub/internal/vcs"
	"github.com/brpub/brpub/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyExitCode maps a publish failure to the process exit code. Problems
// with local inputs exit with 1, everything else with 2.
func classifyExitCode(err error) types.ExitCode {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.IssueId == issue.RegistryNotConfiguredId {
		return types.ExitUsage
	}
	switch {
	case errors.Is(err, publish.ErrConfig), errors.Is(err, publish.ErrNotFound):
		return types.ExitUsage
	default:
		return types.ExitFailure
	}
}

// describePublishError wraps a publish failure into an ActionableError that
// names the failing step and points at the matching catalog entry.
func describePublishError(err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ec := issue.NewErrorContext().WithOperation("publish release").Wrap(err)

	var (
		procErr      *vcs.ProcessError
		transportErr *registry.TransportError
		extractErr   *registry.ExtractionError
		notFound     *publish.NotFoundError
		cfgErr       *publish.ConfigError
	)
	switch {
	case errors.Is(err, vcs.ErrNoTags):
		ec.WithIssue(issue.NoReleaseTagId).
			WithSuggestion("Pass the release tag with --tag")
	case errors.Is(err, vcs.ErrBranchExists):
		ec.WithIssue(issue.BranchExistsId).
			WithSuggestion("Delete the release branch in the registry repository and retry")
	case errors.As(err, &transportErr):
		ec.WithIssue(issue.DownloadFailedId).
			WithResource(transportErr.URL).
			WithSuggestion("Check that the release tag has been pushed")
	case errors.As(err, &extractErr):
		ec.WithIssue(issue.ArchiveInvalidId).
			WithResource(extractErr.Archive)
	case errors.Is(err, publish.ErrNoModuleFile):
		ec.WithIssue(issue.ModuleFileMissingInArchiveId)
	case errors.As(err, &procErr):
		ec.WithIssue(issue.GitCommandFailedId).
			WithResource(procErr.Dir)
	case errors.As(err, &notFound):
		if notFound.What == publish.ModuleFileName {
			ec.WithIssue(issue.ModuleFileNotFoundId).
				WithSuggestion("Run brpub from the module root or pass --module")
		} else {
			ec.WithIssue(issue.TemplateNotFoundId).
				WithSuggestion("Create the release templates under " + publish.TemplateDir + "/")
		}
	case errors.As(err, &cfgErr):
		switch {
		case strings.HasSuffix(cfgErr.Path, publish.ModuleFileName):
			ec.WithIssue(issue.ModuleNameMissingId)
		case strings.HasPrefix(cfgErr.Reason, "repository"):
			ec.WithIssue(issue.RepositoryFormatId).
				WithSuggestion(`Use an entry like "github:owner/repo"`)
		default:
			ec.WithIssue(issue.TemplateInvalidId)
		}
	}

	return ec.Build()
}

// formatErrorForDisplay formats an error for user display, using the
// ActionableError layout when available.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderFailure prints the failure and, in verbose mode, the rendered
// catalog entry explaining it.
func renderFailure(w io.Writer, ae *issue.ActionableError, verbose bool, scheme config.ColorScheme) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(verbose))

	if !verbose {
		return
	}
	entry := ae.Issue()
	if entry == nil {
		return
	}
	rendered, err := entry.Render(glamourStyle(scheme))
	if err != nil {
		log.Warn("failed to render issue catalog entry", "issue", ae.IssueId, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		return string(scheme)
	default:
		return "auto"
	}
}
