// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/brpub/brpub/internal/testutil"
)

func TestGit_InvocationArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(context.Context, *Git) error
		want []string
	}{
		{
			name: "latest tag",
			call: func(ctx context.Context, g *Git) error { _, err := g.LatestTag(ctx); return err },
			want: []string{"describe", "--tags", "--abbrev=0"},
		},
		{
			name: "create branch",
			call: func(ctx context.Context, g *Git) error { return g.CreateBranch(ctx, "foo-1.0.0") },
			want: []string{"checkout", "-b", "foo-1.0.0"},
		},
		{
			name: "stage all",
			call: func(ctx context.Context, g *Git) error { return g.StageAll(ctx) },
			want: []string{"add", "."},
		},
		{
			name: "commit",
			call: func(ctx context.Context, g *Git) error { return g.Commit(ctx, "foo@1.0.0") },
			want: []string{"commit", "-m", "foo@1.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &commandRecorder{stdout: "v1.0.0\n"}
			g := NewGit("/registry", WithBinary("/opt/bin/git"), WithExecCommand(rec.commandFunc()))

			if err := tt.call(t.Context(), g); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			inv := rec.last(t)
			if inv.name != "/opt/bin/git" {
				t.Errorf("binary = %q, want %q", inv.name, "/opt/bin/git")
			}
			if !slices.Equal(inv.args, tt.want) {
				t.Errorf("args = %v, want %v", inv.args, tt.want)
			}
		})
	}
}

func TestGit_LatestTagTrimsOutput(t *testing.T) {
	t.Parallel()

	rec := &commandRecorder{stdout: "v2.3.1\n"}
	g := NewGit(t.TempDir(), WithExecCommand(rec.commandFunc()))

	tag, err := g.LatestTag(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != "v2.3.1" {
		t.Errorf("LatestTag() = %q, want %q", tag, "v2.3.1")
	}
}

func TestGit_FailureClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stderr   string
		wantKind error
	}{
		{
			name:     "no tags",
			stderr:   "fatal: No names found, cannot describe anything.",
			wantKind: ErrNoTags,
		},
		{
			name:     "branch exists",
			stderr:   "fatal: a branch named 'foo-1.0.0' already exists",
			wantKind: ErrBranchExists,
		},
		{
			name:   "other failure",
			stderr: "fatal: not a git repository (or any of the parent directories): .git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &commandRecorder{exitCode: 128, stderr: tt.stderr}
			g := NewGit(t.TempDir(), WithExecCommand(rec.commandFunc()))

			err := g.CreateBranch(t.Context(), "foo-1.0.0")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrProcess) {
				t.Errorf("error does not wrap ErrProcess: %v", err)
			}

			var perr *ProcessError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ProcessError, got %T", err)
			}
			if perr.ExitCode != 128 {
				t.Errorf("ExitCode = %d, want 128", perr.ExitCode)
			}
			if !strings.Contains(perr.Output, tt.stderr) {
				t.Errorf("Output = %q, want it to contain %q", perr.Output, tt.stderr)
			}

			for _, kind := range []error{ErrNoTags, ErrBranchExists} {
				if got, want := errors.Is(err, kind), kind == tt.wantKind; got != want {
					t.Errorf("errors.Is(err, %v) = %v, want %v", kind, got, want)
				}
			}
		})
	}
}

func TestGit_MissingBinary(t *testing.T) {
	t.Parallel()

	g := NewGit(t.TempDir(), WithBinary(filepath.Join(t.TempDir(), "no-such-git")))
	err := g.StageAll(t.Context())
	if !errors.Is(err, ErrProcess) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if !strings.Contains(err.Error(), "git add .") {
		t.Errorf("error %q does not name the command", err)
	}
}

func TestGit_RealRepository(t *testing.T) {
	t.Parallel()
	testutil.RequireGit(t)

	dir := t.TempDir()
	testutil.InitRepo(t, dir)

	g := NewGit(dir)
	ctx := t.Context()

	testutil.MustWriteFile(t, filepath.Join(dir, "MODULE.bazel"), "module(name = \"foo\")\n")
	if err := g.StageAll(ctx); err != nil {
		t.Fatalf("StageAll: %v", err)
	}
	if err := g.Commit(ctx, "initial"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := g.LatestTag(ctx); !errors.Is(err, ErrNoTags) {
		t.Errorf("LatestTag without tags: expected ErrNoTags, got %v", err)
	}

	testutil.Git(t, dir, "tag", "v1.2.0")
	tag, err := g.LatestTag(ctx)
	if err != nil {
		t.Fatalf("LatestTag: %v", err)
	}
	if tag != "v1.2.0" {
		t.Errorf("LatestTag() = %q, want %q", tag, "v1.2.0")
	}

	if err := g.CreateBranch(ctx, "foo-1.2.0"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if head := strings.TrimSpace(testutil.Git(t, dir, "rev-parse", "--abbrev-ref", "HEAD")); head != "foo-1.2.0" {
		t.Errorf("HEAD = %q, want foo-1.2.0", head)
	}
	if err := g.CreateBranch(ctx, "foo-1.2.0"); !errors.Is(err, ErrBranchExists) {
		t.Errorf("second CreateBranch: expected ErrBranchExists, got %v", err)
	}

	testutil.MustWriteFile(t, filepath.Join(dir, "modules", "foo", "metadata.json"), "{}\n")
	if err := g.StageAll(ctx); err != nil {
		t.Fatalf("StageAll: %v", err)
	}
	if err := g.Commit(ctx, "foo@1.2.0"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if subject := strings.TrimSpace(testutil.Git(t, dir, "log", "-1", "--format=%s")); subject != "foo@1.2.0" {
		t.Errorf("commit subject = %q, want foo@1.2.0", subject)
	}
}
