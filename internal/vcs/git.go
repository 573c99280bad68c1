// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

var _ Repository = (*Git)(nil)

type (
	// ExecCommandFunc creates the command used to run git. Tests substitute
	// it to avoid spawning processes.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// GitOption configures a Git repository handle.
	GitOption func(*Git)

	// Git implements Repository by running the git binary with its working
	// directory set to the repository root. The process working directory is
	// never changed.
	Git struct {
		dir         string
		binary      string
		execCommand ExecCommandFunc
	}
)

// WithBinary overrides the git executable.
func WithBinary(path string) GitOption {
	return func(g *Git) {
		if path != "" {
			g.binary = path
		}
	}
}

// WithExecCommand overrides how git commands are created.
func WithExecCommand(fn ExecCommandFunc) GitOption {
	return func(g *Git) {
		g.execCommand = fn
	}
}

// NewGit returns a Repository handle for the working tree at dir.
func NewGit(dir string, opts ...GitOption) *Git {
	g := &Git{
		dir:         dir,
		binary:      DefaultBinary,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dir returns the working tree the handle operates on.
func (g *Git) Dir() string { return g.dir }

// LatestTag runs `git describe --tags --abbrev=0`.
func (g *Git) LatestTag(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		return "", err
	}
	tag := strings.TrimSpace(out)
	if tag == "" {
		return "", &ProcessError{Dir: g.dir, Args: []string{"describe", "--tags", "--abbrev=0"}, Kind: ErrNoTags}
	}
	return tag, nil
}

// CreateBranch runs `git checkout -b <name>`.
func (g *Git) CreateBranch(ctx context.Context, name string) error {
	_, err := g.run(ctx, "checkout", "-b", name)
	return err
}

// StageAll runs `git add .`.
func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", ".")
	return err
}

// Commit runs `git commit -m <message>`.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := g.execCommand(ctx, g.binary, args...)
	cmd.Dir = g.dir
	// Diagnostics are matched textually, so force untranslated messages.
	cmd.Env = append(cmd.Environ(), "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String() + "\n" + stdout.String())
		perr := &ProcessError{
			Dir:    g.dir,
			Args:   args,
			Output: output,
			Kind:   classify(output),
			Err:    err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return "", perr
	}
	return stdout.String(), nil
}
