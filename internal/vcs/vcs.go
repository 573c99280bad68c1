// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProcess is the sentinel wrapped by every ProcessError.
	ErrProcess = errors.New("version control command failed")
	// ErrNoTags is reported when the repository has no tag reachable from HEAD.
	ErrNoTags = errors.New("no tags found")
	// ErrBranchExists is reported when the branch to create already exists.
	ErrBranchExists = errors.New("branch already exists")
)

type (
	// Repository is the set of version-control operations used while
	// publishing. Implementations act on a single working tree.
	Repository interface {
		// LatestTag returns the most recent tag reachable from HEAD.
		LatestTag(ctx context.Context) (string, error)
		// CreateBranch creates the named branch and switches to it.
		CreateBranch(ctx context.Context, name string) error
		// StageAll stages every pending change in the working tree.
		StageAll(ctx context.Context) error
		// Commit records the staged changes with message.
		Commit(ctx context.Context, message string) error
	}

	// ProcessError describes a version-control command that exited
	// unsuccessfully or could not be started.
	ProcessError struct {
		Dir      string
		Args     []string
		ExitCode int
		Output   string
		// Kind is ErrNoTags or ErrBranchExists when the output identifies
		// one of those conditions, nil otherwise.
		Kind error
		Err  error
	}
)

// Error implements the error interface.
func (e *ProcessError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "git %s", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		fmt.Fprintf(&sb, " exited with status %d", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&sb, ": %s", firstLine(out))
	}
	return sb.String()
}

// Unwrap exposes ErrProcess, the classified kind and the underlying error.
func (e *ProcessError) Unwrap() []error {
	errs := []error{ErrProcess}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classify maps well-known git diagnostics onto sentinel errors.
func classify(output string) error {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "no names found"),
		strings.Contains(lower, "no tags can describe"),
		strings.Contains(lower, "cannot describe"):
		return ErrNoTags
	case strings.Contains(lower, "already exists"):
		return ErrBranchExists
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
